package ortho

import "testing"

func TestRemoveTinyEdges(t *testing.T) {
	tests := []struct {
		name       string
		points     Polyline
		closed     bool
		minEdgeLen float64
		want       Polyline
	}{
		{
			name:       "under three points bypass",
			points:     Polyline{{0, 0}, {0.5, 0}},
			minEdgeLen: 2.0,
			want:       Polyline{{0, 0}, {0.5, 0}},
		},
		{
			name:       "short edge vertex dropped",
			points:     Polyline{{0, 0}, {10, 0}, {10.5, 0.1}, {10.5, 10}},
			minEdgeLen: 2.0,
			want:       Polyline{{0, 0}, {10, 0}, {10.5, 10}},
		},
		{
			name:       "edge exactly at threshold kept",
			points:     Polyline{{0, 0}, {2, 0}, {4, 0.5}},
			minEdgeLen: 2.0,
			want:       Polyline{{0, 0}, {2, 0}, {4, 0.5}},
		},
		{
			name:       "closed drops last point near first",
			points:     Polyline{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0.5, 0.5}},
			closed:     true,
			minEdgeLen: 2.0,
			want:       Polyline{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		},
		{
			name:       "open keeps last point near first",
			points:     Polyline{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0.5, 0.5}},
			closed:     false,
			minEdgeLen: 2.0,
			want:       Polyline{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0.5, 0.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveTinyEdges(tt.points, tt.closed, tt.minEdgeLen)
			if !polylinesEqual(got, tt.want) {
				t.Errorf("RemoveTinyEdges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeCollinear(t *testing.T) {
	tests := []struct {
		name   string
		points Polyline
		closed bool
		want   Polyline
	}{
		{
			name:   "under three points bypass",
			points: Polyline{{0, 0}, {5, 0}},
			want:   Polyline{{0, 0}, {5, 0}},
		},
		{
			name:   "midpoint on horizontal edge dropped",
			points: Polyline{{0, 0}, {5, 0}, {10, 0}, {10, 10}},
			want:   Polyline{{0, 0}, {10, 0}, {10, 10}},
		},
		{
			name:   "midpoint on vertical edge dropped",
			points: Polyline{{0, 0}, {0, 5}, {0, 10}, {10, 10}},
			want:   Polyline{{0, 0}, {0, 10}, {10, 10}},
		},
		{
			name:   "true corner kept",
			points: Polyline{{0, 0}, {10, 0}, {10, 10}},
			want:   Polyline{{0, 0}, {10, 0}, {10, 10}},
		},
		{
			name:   "open endpoints always kept",
			points: Polyline{{0, 0}, {5, 0}, {10, 0}},
			want:   Polyline{{0, 0}, {10, 0}},
		},
		{
			name:   "closed wraparound vertex dropped",
			points: Polyline{{5, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			closed: true,
			want:   Polyline{{10, 0}, {10, 10}, {0, 10}, {0, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeCollinear(tt.points, tt.closed)
			if !polylinesEqual(got, tt.want) {
				t.Errorf("MergeCollinear() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeCollinear_ShapePreserved(t *testing.T) {
	// A staircase with no redundant vertices must survive untouched.
	points := Polyline{{0, 0}, {5, 0}, {5, 5}, {10, 5}, {10, 10}}
	got := MergeCollinear(points, false)
	if !polylinesEqual(got, points) {
		t.Errorf("MergeCollinear() = %v, want unchanged %v", got, points)
	}
}
