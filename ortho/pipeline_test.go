package ortho

import (
	"math"
	"testing"
)

// noisyRectangle is a closed 8-point outline of a 10x10 square with jitter
// well below the default tolerances.
var noisyRectangle = Polyline{
	{0.0, 0.1}, {5.2, 0.3}, {10.1, 0.2}, {10.3, 5.1},
	{10.2, 10.0}, {5.0, 10.2}, {0.1, 10.1}, {0.2, 5.0},
}

// assertOrthogonal fails unless every consecutive edge (including the closing
// edge for closed sequences) is exactly axis-aligned.
func assertOrthogonal(t *testing.T, points Polyline, closed bool) {
	t.Helper()
	n := len(points)
	limit := n - 1
	if closed {
		limit = n
	}
	for i := 0; i < limit; i++ {
		a := points[i]
		b := points[(i+1)%n]
		if a.X != b.X && a.Y != b.Y {
			t.Errorf("edge %d not axis-aligned: %v -> %v", i, a, b)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategySimplifyFit, false},
		{"simplify-fit", StrategySimplifyFit, false},
		{"cluster-snap", StrategyClusterSnap, false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}

	bad := []Options{
		{MinStep: 0, Epsilon: 1, ClusterTol: 1, MinEdgeLen: 1},
		{MinStep: 1, Epsilon: -1, ClusterTol: 1, MinEdgeLen: 1},
		{MinStep: 1, Epsilon: 1, ClusterTol: 0, MinEdgeLen: 1},
		{MinStep: 1, Epsilon: 1, ClusterTol: 1, MinEdgeLen: -2},
	}
	for i, opts := range bad {
		if err := opts.Validate(); err == nil {
			t.Errorf("case %d: expected error for %+v", i, opts)
		}
	}
}

func TestEngineFor(t *testing.T) {
	if EngineFor(StrategySimplifyFit).Name() != StrategySimplifyFit {
		t.Error("wrong engine for simplify-fit")
	}
	if EngineFor(StrategyClusterSnap).Name() != StrategyClusterSnap {
		t.Error("wrong engine for cluster-snap")
	}
}

func TestRunPipeline_NoisyRectangle(t *testing.T) {
	got := RunPipeline(SimplifyFitEngine{}, noisyRectangle, true, DefaultOptions())

	if got.Stage != StageCleanup {
		t.Fatalf("stage = %v, want cleanup", got.Stage)
	}
	if len(got.Points) != 4 {
		t.Fatalf("expected 4 corners, got %d: %v", len(got.Points), got.Points)
	}
	assertOrthogonal(t, got.Points, true)

	// Fitted edges stay close to the noisy originals.
	for _, p := range got.Points {
		nearX := math.Abs(p.X) < 1 || math.Abs(p.X-10) < 1
		nearY := math.Abs(p.Y) < 1 || math.Abs(p.Y-10) < 1
		if !nearX || !nearY {
			t.Errorf("corner %v too far from the source square", p)
		}
	}
}

func TestRunPipeline_ClusterSnapRectangle(t *testing.T) {
	got := RunPipeline(ClusterSnapEngine{}, noisyRectangle, true, DefaultOptions())

	if got.Stage != StageCleanup {
		t.Fatalf("stage = %v, want cleanup", got.Stage)
	}
	if !got.Processed() {
		t.Fatal("expected a processed result")
	}
	assertOrthogonal(t, got.Points, true)
}

func TestRunPipeline_OpenStaircase(t *testing.T) {
	points := Polyline{
		{0, 0.1}, {20, 0.2}, {40, 0.1}, {40.2, 10}, {39.9, 20},
		{60, 20.2}, {80, 19.9}, {80.1, 30}, {79.8, 40},
	}

	got := RunPipeline(SimplifyFitEngine{}, points, false, DefaultOptions())

	if got.Stage != StageCleanup {
		t.Fatalf("stage = %v, want cleanup", got.Stage)
	}
	assertOrthogonal(t, got.Points, false)
}

func TestRunPipeline_OpenTwoRunsDegrades(t *testing.T) {
	// Two orientation runs yield a single intersection corner, which is not
	// a drawable polyline. The engine reports failure and the pipeline
	// hands back the simplified sequence instead.
	points := Polyline{{0, 0.1}, {10, 0.1}, {10.2, 12}}

	got := RunPipeline(SimplifyFitEngine{}, points, false, DefaultOptions())

	if got.Stage != StageRebuild {
		t.Fatalf("stage = %v, want rebuild", got.Stage)
	}
	if !got.Processed() {
		t.Error("simplified fallback with >=2 points still counts as processed")
	}
}

func TestRunPipeline_ClosedTwoRunsDegrades(t *testing.T) {
	// A closed outline whose segments reduce to one horizontal and one
	// vertical run cannot be rebuilt: intersecting the pair both ways
	// around the loop would yield the same point twice, a collapsed loop.
	// The engine must report failure and hand back the simplified points.
	points := Polyline{{0, 0}, {10, 0}, {9, 10}}

	rebuilt, ok := SimplifyFitEngine{}.Rebuild(points, true, DefaultOptions())
	if ok {
		t.Fatalf("Rebuild reported success for a two-run loop: %v", rebuilt)
	}

	got := RunPipeline(SimplifyFitEngine{}, points, true, DefaultOptions())

	if got.Stage != StageRebuild {
		t.Fatalf("stage = %v, want rebuild", got.Stage)
	}
	if n := len(got.Points); n >= 2 && pointsEqual(got.Points[0], got.Points[n-1]) {
		t.Errorf("result closes on a duplicate point: %v", got.Points)
	}
}

func TestRunPipeline_TooFewInputPoints(t *testing.T) {
	for _, points := range []Polyline{nil, {{3, 4}}} {
		got := RunPipeline(SimplifyFitEngine{}, points, false, DefaultOptions())
		if got.Stage != StageInput {
			t.Errorf("stage = %v, want input", got.Stage)
		}
		if got.Processed() {
			t.Errorf("%v must not count as processed", points)
		}
		if len(got.Points) != len(points) {
			t.Errorf("points altered: %v", got.Points)
		}
	}
}

func TestRunPipeline_AllPointsIdentical(t *testing.T) {
	points := Polyline{{2, 2}, {2, 2}, {2, 2}, {2, 2}}

	got := RunPipeline(SimplifyFitEngine{}, points, true, DefaultOptions())

	if got.Stage != StageDedupe {
		t.Errorf("stage = %v, want dedupe", got.Stage)
	}
	if got.Processed() {
		t.Error("degenerate input must not count as processed")
	}
}

func TestRunPipeline_NonFinitePointsDropped(t *testing.T) {
	points := noisyRectangle.Clone()
	points = append(points, Point{X: math.NaN(), Y: 5})

	got := RunPipeline(SimplifyFitEngine{}, points, true, DefaultOptions())

	if got.Stage != StageCleanup {
		t.Fatalf("stage = %v, want cleanup", got.Stage)
	}
	for _, p := range got.Points {
		if !p.IsFinite() {
			t.Fatalf("non-finite point leaked into output: %v", p)
		}
	}
}

func TestRunPipeline_InputNotMutated(t *testing.T) {
	points := noisyRectangle.Clone()
	orig := points.Clone()

	RunPipeline(SimplifyFitEngine{}, points, true, DefaultOptions())

	if !polylinesEqual(points, orig) {
		t.Errorf("input mutated: %v", points)
	}
}

func TestRunPipeline_Deterministic(t *testing.T) {
	for _, engine := range []Engine{SimplifyFitEngine{}, ClusterSnapEngine{}} {
		a := RunPipeline(engine, noisyRectangle, true, DefaultOptions())
		b := RunPipeline(engine, noisyRectangle, true, DefaultOptions())
		if !polylinesEqual(a.Points, b.Points) || a.Stage != b.Stage {
			t.Errorf("%s: non-deterministic result", engine.Name())
		}
	}
}

func TestOrthogonalize(t *testing.T) {
	got := Orthogonalize(noisyRectangle, true, DefaultOptions())
	if len(got) != 4 {
		t.Fatalf("expected 4 corners, got %v", got)
	}
	assertOrthogonal(t, got, true)
}

func TestStageString(t *testing.T) {
	stages := map[Stage]string{
		StageInput:   "input",
		StageDedupe:  "dedupe",
		StageRebuild: "rebuild",
		StageCleanup: "cleanup",
	}
	for stage, want := range stages {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}
