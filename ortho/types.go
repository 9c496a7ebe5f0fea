package ortho

import "math"

// Point represents a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of two points
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference of two points
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns the point scaled by a scalar factor
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dot returns the dot product of two points treated as vectors
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// LengthSq returns the squared length of the point treated as a vector
func (p Point) LengthSq() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Length returns the length of the point treated as a vector
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistSq returns the squared distance between two points
func (p Point) DistSq(q Point) float64 {
	return p.Sub(q).LengthSq()
}

// Dist returns the distance between two points
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Length()
}

// IsFinite reports whether both coordinates are finite numbers
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Polyline represents a sequential list of points. Whether an implicit edge
// connects the last point back to the first is carried alongside as a
// separate closed flag, never embedded in the sequence itself.
type Polyline []Point

// Clone returns an independently owned copy of the polyline
func (pl Polyline) Clone() Polyline {
	if pl == nil {
		return nil
	}
	out := make(Polyline, len(pl))
	copy(out, pl)
	return out
}

// Orientation classifies a segment as horizontal or vertical. Every segment
// is forced into one of the two; there is no diagonal category.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns a human-readable orientation name
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Run is a maximal group of consecutive same-orientation segments fitted to
// a single constant coordinate: Y for horizontal runs, X for vertical runs.
// Min and Max span the run's extent along its free axis. Runs are derived
// data scoped to one pipeline invocation and are never persisted.
type Run struct {
	Orientation Orientation
	Value       float64
	Min, Max    float64
}

// Default tuning values, in input units.
const (
	DefaultMinStep    = 1.0
	DefaultEpsilon    = 3.0
	DefaultClusterTol = 0.5
	DefaultMinEdgeLen = 2.0
)

// Options holds the tuning parameters for one pipeline invocation.
// All values must be positive; Validate rejects anything else.
type Options struct {
	// MinStep drops points closer than this to their predecessor.
	MinStep float64
	// Epsilon is the perpendicular-distance simplification tolerance.
	Epsilon float64
	// ClusterTol is the 1D grouping tolerance for the cluster-snap engine.
	ClusterTol float64
	// MinEdgeLen drops reconstructed edges shorter than this.
	MinEdgeLen float64
}

// DefaultOptions returns the default tuning parameters
func DefaultOptions() Options {
	return Options{
		MinStep:    DefaultMinStep,
		Epsilon:    DefaultEpsilon,
		ClusterTol: DefaultClusterTol,
		MinEdgeLen: DefaultMinEdgeLen,
	}
}

// TuningConfig holds the tuning parameters as they appear in config files.
// Zero-valued fields fall back to the defaults when converted to Options.
type TuningConfig struct {
	MinStep    float64 `yaml:"minStep,omitempty" json:"minStep,omitempty"`
	Eps        float64 `yaml:"eps,omitempty" json:"eps,omitempty"`
	ClusterTol float64 `yaml:"clusterTol,omitempty" json:"clusterTol,omitempty"`
	MinEdgeLen float64 `yaml:"minEdgeLen,omitempty" json:"minEdgeLen,omitempty"`
}

// Options converts the config representation into pipeline Options,
// substituting defaults for unset fields
func (tc TuningConfig) Options() Options {
	opts := DefaultOptions()
	if tc.MinStep != 0 {
		opts.MinStep = tc.MinStep
	}
	if tc.Eps != 0 {
		opts.Epsilon = tc.Eps
	}
	if tc.ClusterTol != 0 {
		opts.ClusterTol = tc.ClusterTol
	}
	if tc.MinEdgeLen != 0 {
		opts.MinEdgeLen = tc.MinEdgeLen
	}
	return opts
}

// MQTTConfig holds MQTT connection settings for service mode
type MQTTConfig struct {
	Broker      string `yaml:"broker,omitempty" json:"broker,omitempty"`
	ClientID    string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
	TopicPrefix string `yaml:"topicPrefix,omitempty" json:"topicPrefix,omitempty"`
}

// RenderConfig holds preview rendering settings
type RenderConfig struct {
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"` // grid line spacing in input units (default 10)
	Resolution  float64 `yaml:"resolution,omitempty" json:"resolution,omitempty"`   // vector PNG DPI (default 300)
	Scale       float64 `yaml:"scale,omitempty" json:"scale,omitempty"`             // raster pixels per input unit (default 4)
}

// Config represents the full configuration file
type Config struct {
	Tuning   TuningConfig `yaml:"tuning,omitempty" json:"tuning,omitempty"`
	Strategy string       `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	MinArea  float64      `yaml:"minArea,omitempty" json:"minArea,omitempty"` // skip closed outlines below this area
	Layers   []string     `yaml:"layers,omitempty" json:"layers,omitempty"`   // restrict processing to these layers; empty means all
	MQTT     MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	Render   RenderConfig `yaml:"render,omitempty" json:"render,omitempty"`
}

// WantsLayer reports whether entities on the given layer should be
// processed. An empty layer list means every layer is in scope.
func (c *Config) WantsLayer(layer string) bool {
	if len(c.Layers) == 0 {
		return true
	}
	for _, l := range c.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// TopicPrefixOrDefault returns the configured MQTT topic prefix or the default
func (mc MQTTConfig) TopicPrefixOrDefault() string {
	if mc.TopicPrefix != "" {
		return mc.TopicPrefix
	}
	return "orthotrace"
}
