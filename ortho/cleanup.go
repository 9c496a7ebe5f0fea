package ortho

import "math"

// collinearTol is the tolerance for the axis-aligned collinearity test,
// in input units.
const collinearTol = 1e-9

// RemoveTinyEdges walks the sequence keeping the first point and appending
// each subsequent point only when it lies at least minEdgeLen from the last
// kept point. For closed sequences a final kept point within minEdgeLen of
// the first is dropped to prevent a degenerate closing edge. Sequences with
// fewer than 3 points bypass the stage unchanged.
func RemoveTinyEdges(points Polyline, closed bool, minEdgeLen float64) Polyline {
	if len(points) < 3 {
		return points.Clone()
	}

	minSq := minEdgeLen * minEdgeLen
	out := make(Polyline, 0, len(points))
	out = append(out, points[0])

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

// MergeCollinear drops every vertex that is axis-collinear with its immediate
// neighbors: predecessor and vertex share an X or a Y, and vertex and
// successor share the same axis, within a small fixed tolerance. Closed
// sequences use wraparound neighbors; the first and last vertices of open
// sequences are always retained. The shape is unchanged, only redundant
// straight-line intermediate vertices disappear.
func MergeCollinear(points Polyline, closed bool) Polyline {
	n := len(points)
	if n < 3 {
		return points.Clone()
	}

	out := make(Polyline, 0, n)
	for i, p := range points {
		if !closed && (i == 0 || i == n-1) {
			out = append(out, p)
			continue
		}

		prev := points[(i-1+n)%n]
		next := points[(i+1)%n]

		sharedX := math.Abs(prev.X-p.X) < collinearTol && math.Abs(p.X-next.X) < collinearTol
		sharedY := math.Abs(prev.Y-p.Y) < collinearTol && math.Abs(p.Y-next.Y) < collinearTol
		if sharedX || sharedY {
			continue
		}
		out = append(out, p)
	}

	return out
}
