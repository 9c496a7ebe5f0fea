package ortho

import "math"

// SegmentOrientation classifies the segment a-b by its dominant axis of
// displacement. Ties favor horizontal.
func SegmentOrientation(a, b Point) Orientation {
	if math.Abs(b.X-a.X) >= math.Abs(b.Y-a.Y) {
		return Horizontal
	}
	return Vertical
}

// runBuilder accumulates the member points of one orientation run.
type runBuilder struct {
	orient Orientation
	// values holds the fitted-axis coordinate of every member point
	// (Y for horizontal runs, X for vertical runs); along holds the
	// free-axis coordinate, used for the run's [min, max] extent.
	values []float64
	along  []float64
	// first and second are the raw endpoints of the run's first segment,
	// kept as a fallback when every candidate value is non-finite.
	first, second Point
}

func (rb *runBuilder) add(p Point) {
	if rb.orient == Horizontal {
		rb.values = append(rb.values, p.Y)
		rb.along = append(rb.along, p.X)
	} else {
		rb.values = append(rb.values, p.X)
		rb.along = append(rb.along, p.Y)
	}
}

func (rb *runBuilder) build() Run {
	v, ok := median(rb.values)
	if !ok {
		// Degenerate candidate set: fall back to the first segment's
		// raw endpoints, then to 0 when even those are corrupt.
		var a, b float64
		if rb.orient == Horizontal {
			a, b = rb.first.Y, rb.second.Y
		} else {
			a, b = rb.first.X, rb.second.X
		}
		v, ok = median([]float64{a, b})
		if !ok {
			v = 0
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, a := range rb.along {
		if !isFinite(a) {
			continue
		}
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	if lo > hi {
		lo, hi = 0, 0
	}

	return Run{Orientation: rb.orient, Value: v, Min: lo, Max: hi}
}

// BuildRuns classifies each segment of the sequence by orientation and merges
// consecutive same-orientation segments into runs. Each run's constant
// coordinate is the median of the relevant coordinate across its member
// points, which keeps a single jittery outlier from dragging the fitted edge.
//
// For closed sequences the segment from the last point back to the first is
// included, and when the first and last runs share an orientation they are
// merged across the wrap boundary: they are one continuous run that happens
// to span the closure point, so their members are pooled before the median
// is taken.
func BuildRuns(points Polyline, closed bool) []Run {
	n := len(points)
	if n < 2 {
		return nil
	}

	segCount := n - 1
	if closed {
		segCount = n
	}

	var builders []*runBuilder
	var cur *runBuilder

	for i := 0; i < segCount; i++ {
		a := points[i]
		b := points[(i+1)%n]
		orient := SegmentOrientation(a, b)

		if cur == nil || cur.orient != orient {
			cur = &runBuilder{orient: orient, first: a, second: b}
			cur.add(a)
			builders = append(builders, cur)
		}
		cur.add(b)
	}

	// Wrap-boundary merge: the run ending at the closure point and the run
	// starting at point 0 are the same run when their orientations match.
	if closed && len(builders) > 1 {
		first := builders[0]
		last := builders[len(builders)-1]
		if first.orient == last.orient {
			first.values = append(last.values, first.values...)
			first.along = append(last.along, first.along...)
			first.first = last.first
			first.second = last.second
			builders = builders[:len(builders)-1]
		}
	}

	runs := make([]Run, len(builders))
	for i, rb := range builders {
		runs[i] = rb.build()
	}
	return runs
}

// ReconstructCorners produces the vertex sequence for a run sequence by
// intersecting each consecutive pair of runs: the corner takes its X from
// the vertical run and its Y from the horizontal run of the pair. Open
// sequences yield one corner per adjacent pair (no wraparound); closed
// sequences include the wraparound pair.
//
// Adjacent same-orientation runs indicate an upstream merge failure; such
// pairs are skipped rather than intersected.
func ReconstructCorners(runs []Run, closed bool) Polyline {
	n := len(runs)
	if n < 2 {
		return nil
	}

	limit := n - 1
	if closed {
		limit = n
	}

	out := make(Polyline, 0, limit)
	for i := 0; i < limit; i++ {
		a := runs[i]
		b := runs[(i+1)%n]
		if a.Orientation == b.Orientation {
			continue
		}

		if a.Orientation == Horizontal {
			out = append(out, Point{X: b.Value, Y: a.Value})
		} else {
			out = append(out, Point{X: a.Value, Y: b.Value})
		}
	}
	return out
}
