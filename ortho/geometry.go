package ortho

import (
	"math"
	"sort"
)

// Dedupe produces a copy of the sequence with no two consecutive points
// closer than minStep. The first point is always kept. For closed sequences
// a trailing point that lands within minStep of the first is dropped so the
// implicit closing edge never degenerates to zero length.
//
// The output is never shorter than 1 point for non-empty input, but may be
// as short as 1-2 points for highly degenerate input. Callers must treat
// fewer than 2 output points as "cannot proceed".
func Dedupe(points Polyline, closed bool, minStep float64) Polyline {
	if len(points) == 0 {
		return Polyline{}
	}

	minSq := minStep * minStep
	out := make(Polyline, 0, len(points))
	out = append(out, points[0])

	// Compare squared distances to avoid a square root per point.
	for _, p := range points[1:] {
		if p.DistSq(out[len(out)-1]) >= minSq {
			out = append(out, p)
		}
	}

	if closed && len(out) > 1 && out[len(out)-1].DistSq(out[0]) < minSq {
		out = out[:len(out)-1]
	}

	return out
}

// dropNonFinite removes points with NaN or infinite coordinates so a single
// corrupt point cannot poison downstream statistics.
func dropNonFinite(points Polyline) Polyline {
	clean := true
	for _, p := range points {
		if !p.IsFinite() {
			clean = false
			break
		}
	}
	if clean {
		return points
	}

	out := make(Polyline, 0, len(points))
	for _, p := range points {
		if p.IsFinite() {
			out = append(out, p)
		}
	}
	return out
}

// segmentDistance returns the distance from p to the nearest point on the
// segment a-b. The projection parameter is clamped to [0,1] so distance is
// measured to the segment, not the infinite line. Near-zero-length segments
// fall back to plain point-to-point distance.
func segmentDistance(p, a, b Point) float64 {
	d := b.Sub(a)
	lenSq := d.LengthSq()
	if lenSq < 1e-18 {
		return p.Dist(a)
	}

	t := p.Sub(a).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return p.Dist(a.Add(d.Scale(t)))
}

// median returns the median of the finite values in vs and true, or 0 and
// false when no finite value remains. The input slice is not modified.
func median(vs []float64) (float64, bool) {
	finite := make([]float64, 0, len(vs))
	for _, v := range vs {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}

	sort.Float64s(finite)
	mid := len(finite) / 2
	if len(finite)%2 == 1 {
		return finite[mid], true
	}
	return (finite[mid-1] + finite[mid]) / 2, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
