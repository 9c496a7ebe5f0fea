package ortho

// Simplify reduces a point sequence using perpendicular-distance
// (Douglas-Peucker) simplification with tolerance eps. Closed sequences are
// opened at a stable split point first so the anchor segment never crosses
// the closure seam.
func Simplify(points Polyline, closed bool, eps float64) Polyline {
	if closed {
		return SimplifyClosed(points, eps)
	}
	return SimplifyOpen(points, eps)
}

// SimplifyOpen simplifies an open sequence: the anchor segment runs from the
// first to the last point; the interior point with maximum perpendicular
// distance to that segment splits the span when the distance exceeds eps,
// otherwise the span collapses to its two endpoints.
//
// Spans are processed from an explicit work stack rather than by recursing,
// so adversarial inputs cannot exhaust the goroutine stack. A keep mask over
// the input indices preserves original point order in the output.
func SimplifyOpen(points Polyline, eps float64) Polyline {
	if len(points) < 3 {
		return points.Clone()
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true

	type span struct{ start, end int }
	stack := make([]span, 0, 64)
	stack = append(stack, span{0, len(points) - 1})

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.start < 2 {
			continue
		}

		maxDist := 0.0
		maxIdx := s.start
		for i := s.start + 1; i < s.end; i++ {
			d := segmentDistance(points[i], points[s.start], points[s.end])
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxDist > eps {
			keep[maxIdx] = true
			stack = append(stack, span{s.start, maxIdx}, span{maxIdx, s.end})
		}
	}

	out := make(Polyline, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// SimplifyClosed simplifies a closed sequence by opening the loop first:
// the point farthest from the first point becomes the new start/end, the
// rotated sequence is simplified as an open one, and the duplicate closing
// point is removed afterwards. The farthest-point choice is deterministic
// (first point achieving the maximum wins) so identical input always yields
// identical output.
func SimplifyClosed(points Polyline, eps float64) Polyline {
	if len(points) < 3 {
		return points.Clone()
	}

	pivot := 0
	best := -1.0
	for i, p := range points {
		if d := p.DistSq(points[0]); d > best {
			best = d
			pivot = i
		}
	}

	// Rotate so the pivot becomes both start and end of an explicit loop.
	rotated := make(Polyline, 0, len(points)+1)
	rotated = append(rotated, points[pivot:]...)
	rotated = append(rotated, points[:pivot]...)
	rotated = append(rotated, points[pivot])

	out := SimplifyOpen(rotated, eps)

	// The simplifier always keeps both endpoints, which are the same point
	// here. Drop the reintroduced closing duplicate.
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	return out
}
