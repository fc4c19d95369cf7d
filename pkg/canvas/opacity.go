package canvas

import "github.com/matzehuels/swapsort/pkg/errors"

// OpacityIndex maps opaque-pixel ordinals to linear canvas positions.
// It is immutable once built.
type OpacityIndex struct {
	positions []int
}

// NewOpacityIndex scans alpha in canvas order and records every opaque pixel.
// An odd opaque count cannot be paired and fails with ErrCodeOddOpaque.
func NewOpacityIndex(c *Canvas) (*OpacityIndex, error) {
	positions := make([]int, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.Opaque(i) {
			positions = append(positions, i)
		}
	}
	if len(positions)%2 != 0 {
		return nil, errors.New(errors.ErrCodeOddOpaque,
			"canvas has %d opaque pixels; an even count is required", len(positions))
	}
	return &OpacityIndex{positions: positions}, nil
}

// Len returns the number of opaque pixels.
func (x *OpacityIndex) Len() int {
	return len(x.positions)
}

// PairCount returns Len()/2.
func (x *OpacityIndex) PairCount() int {
	return len(x.positions) / 2
}

// Position returns the canvas index of the given opaque ordinal.
func (x *OpacityIndex) Position(ordinal int) int {
	return x.positions[ordinal]
}
