package cache

// Keyer derives cache keys.
type Keyer interface {
	// AggregateKey returns the key of the aggregate table of a canvas.
	AggregateKey(canvasHash string, opts AggregateKeyOpts) string
}

// AggregateKeyOpts lists everything besides the canvas that shapes a table.
type AggregateKeyOpts struct {
	Format      string    `json:"format"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Radius      int       `json:"radius"`
	Mode        string    `json:"mode"`
	IncludeSelf bool      `json:"include_self"`
	Weights     []float64 `json:"weights,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AggregateKey implements Keyer.
func (DefaultKeyer) AggregateKey(canvasHash string, opts AggregateKeyOpts) string {
	return hashKey("aggregate", canvasHash, opts)
}

var _ Keyer = DefaultKeyer{}
