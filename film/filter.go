package film

import (
	"fmt"
	"math"

	"row-major.net/harpoon/vmath/vec2"
)

// Filter weights a sample by its offset from the pixel center, in pixel
// units.
type Filter int

const (
	Box Filter = iota
	Triangle
)

func (f Filter) String() string {
	switch f {
	case Box:
		return "box"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

func ParseFilter(name string) (Filter, error) {
	switch name {
	case "box":
		return Box, nil
	case "triangle":
		return Triangle, nil
	}
	return Box, fmt.Errorf("unknown reconstruction filter %q", name)
}

func (f Filter) Weight(d vec2.T) float64 {
	switch f {
	case Triangle:
		return math.Max(0, 1-math.Abs(d[0])) * math.Max(0, 1-math.Abs(d[1]))
	}
	return 1
}
