package ortho

import "fmt"

// Strategy selects which rebuilding engine the pipeline uses.
type Strategy string

const (
	// StrategySimplifyFit simplifies the outline recursively, fits
	// orientation runs by median, and rebuilds corners by intersection.
	// Precise, with a quadratic worst case on adversarial input.
	StrategySimplifyFit Strategy = "simplify-fit"

	// StrategyClusterSnap clusters raw X and Y coordinates into discrete
	// levels and snaps every point to its nearest level. Cheaper, with no
	// recursion, intended for already near-orthogonal data.
	StrategyClusterSnap Strategy = "cluster-snap"
)

// ParseStrategy converts a config/CLI string into a Strategy.
// An empty string selects StrategySimplifyFit.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySimplifyFit:
		return StrategySimplifyFit, nil
	case StrategyClusterSnap:
		return StrategyClusterSnap, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategySimplifyFit, StrategyClusterSnap)
}

// Validate rejects non-positive tuning values. Invalid configuration is the
// one fatal-by-contract condition: callers must reject it before invoking
// the pipeline, which itself assumes valid options.
func (o Options) Validate() error {
	if o.MinStep <= 0 {
		return fmt.Errorf("minStep must be positive, got %v", o.MinStep)
	}
	if o.Epsilon <= 0 {
		return fmt.Errorf("eps must be positive, got %v", o.Epsilon)
	}
	if o.ClusterTol <= 0 {
		return fmt.Errorf("clusterTol must be positive, got %v", o.ClusterTol)
	}
	if o.MinEdgeLen <= 0 {
		return fmt.Errorf("minEdgeLen must be positive, got %v", o.MinEdgeLen)
	}
	return nil
}

// Engine rebuilds a de-duplicated point sequence into an axis-aligned one.
// Rebuild returns the rebuilt sequence and true, or the best available
// intermediate sequence and false when the shape cannot be rebuilt (for
// example when fewer than two orientation runs remain). Engines never
// mutate their input.
type Engine interface {
	Name() Strategy
	Rebuild(points Polyline, closed bool, opts Options) (Polyline, bool)
}

// SimplifyFitEngine implements the simplify-and-fit strategy.
type SimplifyFitEngine struct{}

// Name returns StrategySimplifyFit
func (SimplifyFitEngine) Name() Strategy { return StrategySimplifyFit }

// Rebuild simplifies the sequence, groups segments into orientation runs,
// and reconstructs corners as run intersections. When too few runs remain
// the shape cannot be rebuilt into a valid polyline and the simplified
// points are returned unchanged. Open sequences need at least 2 corners.
// Closed sequences need at least 3: with only two runs the wraparound pair
// intersects the same two runs again, which would collapse the loop to a
// pair of duplicate points.
func (SimplifyFitEngine) Rebuild(points Polyline, closed bool, opts Options) (Polyline, bool) {
	simplified := Simplify(points, closed, opts.Epsilon)
	if len(simplified) < 2 {
		return simplified, false
	}

	runs := BuildRuns(simplified, closed)
	if len(runs) < 2 {
		return simplified, false
	}

	minCorners := 2
	if closed {
		minCorners = 3
	}
	corners := ReconstructCorners(runs, closed)
	if len(corners) < minCorners {
		return simplified, false
	}
	return corners, true
}

// ClusterSnapEngine implements the cluster-snap strategy.
type ClusterSnapEngine struct{}

// Name returns StrategyClusterSnap
func (ClusterSnapEngine) Name() Strategy { return StrategyClusterSnap }

// Rebuild clusters the X and Y coordinates into levels independently and
// snaps every point to its nearest level on each axis. Sorting dominates,
// so the cost stays O(n log n) with no recursion.
func (ClusterSnapEngine) Rebuild(points Polyline, closed bool, opts Options) (Polyline, bool) {
	if len(points) < 2 {
		return points.Clone(), false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	snapped := SnapPolyline(points, ClusterLevels(xs, opts.ClusterTol), ClusterLevels(ys, opts.ClusterTol))
	return snapped, true
}

// EngineFor returns the engine implementing the given strategy.
func EngineFor(s Strategy) Engine {
	if s == StrategyClusterSnap {
		return ClusterSnapEngine{}
	}
	return SimplifyFitEngine{}
}

// Stage identifies how far the pipeline progressed before returning.
type Stage int

const (
	// StageInput: fewer than 2 input points, returned as a copy untouched.
	StageInput Stage = iota
	// StageDedupe: de-duplication left too few points to rebuild.
	StageDedupe
	// StageRebuild: the engine could not rebuild; the last well-formed
	// intermediate sequence was returned without cleanup.
	StageRebuild
	// StageCleanup: the full pipeline ran to completion.
	StageCleanup
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageDedupe:
		return "dedupe"
	case StageRebuild:
		return "rebuild"
	default:
		return "cleanup"
	}
}

// Result carries the pipeline output and the furthest stage reached.
type Result struct {
	Points Polyline
	Stage  Stage
}

// Processed reports whether the output is usable by a caller: at least two
// points survived. Anything shorter must leave the source entity untouched.
func (r Result) Processed() bool {
	return len(r.Points) >= 2
}

// RunPipeline executes the shared pipeline with the given engine: drop
// non-finite points, de-duplicate, rebuild, then remove tiny edges and
// redundant collinear vertices. Every stage degrades gracefully; no
// geometric input can make the pipeline fail. The input sequence is never
// mutated and the returned sequence is independently owned.
//
// Options are assumed valid; see Options.Validate.
func RunPipeline(engine Engine, points Polyline, closed bool, opts Options) Result {
	if len(points) < 2 {
		return Result{Points: points.Clone(), Stage: StageInput}
	}

	deduped := Dedupe(dropNonFinite(points), closed, opts.MinStep)
	if len(deduped) < 2 {
		return Result{Points: deduped, Stage: StageDedupe}
	}

	rebuilt, ok := engine.Rebuild(deduped, closed, opts)
	if !ok {
		return Result{Points: rebuilt, Stage: StageRebuild}
	}

	cleaned := RemoveTinyEdges(rebuilt, closed, opts.MinEdgeLen)
	cleaned = MergeCollinear(cleaned, closed)
	return Result{Points: cleaned, Stage: StageCleanup}
}

// Orthogonalize converts a noisy point sequence into an axis-aligned one
// using the simplify-and-fit engine and returns just the points. It is the
// plain-function form of the core contract; adapters that need to know how
// far processing got use RunPipeline directly.
func Orthogonalize(points Polyline, closed bool, opts Options) Polyline {
	return RunPipeline(SimplifyFitEngine{}, points, closed, opts).Points
}
