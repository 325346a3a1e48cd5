package scale

// Logical rink drawing size in feet.
const (
	RinkWidth  = 200.0
	RinkHeight = 85.0
)

const AspectRatio = RinkWidth / RinkHeight

type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fit returns the largest uniform scale that keeps a RinkWidth x RinkHeight
// drawing inside a width x height viewport. A zero (or negative) dimension
// collapses both factors to zero.
func Fit(width, height float64) Scale {
	if width <= 0 || height <= 0 {
		return Scale{}
	}

	aspectWidth := height * AspectRatio
	aspectHeight := width / AspectRatio

	return Scale{
		X: min(aspectWidth, width) / RinkWidth,
		Y: min(aspectHeight, height) / RinkHeight,
	}
}

// Size is the pixel size of the scaled drawing.
func (s Scale) Size() (width, height float64) {
	return RinkWidth * s.X, RinkHeight * s.Y
}

func (s Scale) IsZero() bool {
	return s.X == 0 || s.Y == 0
}
