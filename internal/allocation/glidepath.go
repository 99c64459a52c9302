package allocation

import (
	"fmt"
	"math"
)

// Curve selects the easing applied to progress before interpolation. Every
// supported curve is monotonic on [0,1] with f(0)=0 and f(1)=1, which is what
// makes chained glide-path phases compose continuously.
type Curve string

const (
	CurveLinear  Curve = "linear"
	CurveEaseIn  Curve = "easeIn"
	CurveEaseOut Curve = "easeOut"
	CurveSCurve  Curve = "sCurve"
)

// WeightTolerance is the float slack allowed when checking that point
// weights sum to one.
const WeightTolerance = 1e-9

func ease(progress float64, shape Curve) float64 {
	switch shape {
	case CurveEaseIn:
		return progress * progress
	case CurveEaseOut:
		return math.Sqrt(progress)
	case CurveSCurve:
		return 3*progress*progress - 2*progress*progress*progress
	default:
		return progress
	}
}

// Interpolate maps pre-normalized progress through the easing curve and
// linearly interpolates between start and end. Progress is clamped to [0,1],
// so the output always lies between start and end inclusive.
func Interpolate(start, end, progress float64, shape Curve) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return start + (end-start)*ease(progress, shape)
}

// Point is one sample on a glide path. Weights sum to one.
type Point struct {
	Age             int     `json:"age" yaml:"age"`
	Year            int     `json:"year" yaml:"year"`
	PrimaryWeight   float64 `json:"primary_weight" yaml:"primary_weight"`
	SecondaryWeight float64 `json:"secondary_weight" yaml:"secondary_weight"`
}

// PointAt computes the two-asset mix at a position within [rangeStart,
// rangeEnd]. The secondary weight is the complement of the primary.
func PointAt(startWeight, endWeight float64, position, rangeStart, rangeEnd int, shape Curve) (Point, error) {
	if rangeEnd <= rangeStart {
		return Point{}, fmt.Errorf("glide path range [%d, %d] is empty", rangeStart, rangeEnd)
	}
	progress := float64(position-rangeStart) / float64(rangeEnd-rangeStart)
	primary := Interpolate(startWeight, endWeight, progress, shape)
	return Point{
		Age:             position,
		PrimaryWeight:   primary,
		SecondaryWeight: 1 - primary,
	}, nil
}

// CheckWeights verifies the sum-to-one invariant within tolerance.
func CheckWeights(p Point) error {
	sum := p.PrimaryWeight + p.SecondaryWeight
	if math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("glide path weights sum to %f, expected 1", sum)
	}
	return nil
}
