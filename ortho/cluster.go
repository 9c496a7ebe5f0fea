package ortho

import (
	"math"
	"sort"
)

// ClusterLevels groups the finite values of vs into clusters by 1D proximity:
// after sorting, each value joins the current cluster when it lies within tol
// of the most recently added member, otherwise it starts a new cluster. Each
// cluster collapses to its median, and the resulting level set is returned in
// ascending order.
func ClusterLevels(vs []float64, tol float64) []float64 {
	sorted := make([]float64, 0, len(vs))
	for _, v := range vs {
		if isFinite(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)

	var levels []float64
	cluster := []float64{sorted[0]}

	flush := func() {
		if m, ok := median(cluster); ok {
			levels = append(levels, m)
		}
	}

	for _, v := range sorted[1:] {
		if v-cluster[len(cluster)-1] <= tol {
			cluster = append(cluster, v)
			continue
		}
		flush()
		cluster = []float64{v}
	}
	flush()

	return levels
}

// SnapToLevels returns the level nearest to v by absolute difference. Ties
// resolve to the first level in iteration order. When the level set is empty
// or v is not finite, v is returned unchanged.
func SnapToLevels(v float64, levels []float64) float64 {
	if len(levels) == 0 || !isFinite(v) {
		return v
	}

	best := levels[0]
	bestDist := math.Abs(v - levels[0])
	for _, l := range levels[1:] {
		if d := math.Abs(v - l); d < bestDist {
			best = l
			bestDist = d
		}
	}
	return best
}

// SnapPolyline snaps every point's coordinates to the nearest X and Y level
// independently. The input is not modified.
func SnapPolyline(points Polyline, xLevels, yLevels []float64) Polyline {
	out := make(Polyline, len(points))
	for i, p := range points {
		out[i] = Point{
			X: SnapToLevels(p.X, xLevels),
			Y: SnapToLevels(p.Y, yLevels),
		}
	}
	return out
}
