package lifting

import (
	"fmt"
	"math"
)

const (
	// LoadConstant is the coefficient of the simplified lifting equation (kg).
	LoadConstant = 23.58
	// DistanceExponent is applied to the distance/height ratio.
	DistanceExponent = 0.25
)

// RWL returns the recommended weight limit for one frame:
// LoadConstant * (distance/height)^DistanceExponent.
func RWL(distance, height float64) float64 {
	return LoadConstant * math.Pow(distance/height, DistanceExponent)
}

// CalculateRWL computes RWL for each distance. distances[i] is frame i+1.
//
// A non-positive height has no real result for a fractional power and is
// rejected up front. A zero RWL (zero distance) is rejected as well since
// LI would divide by it.
func CalculateRWL(distances []float64, height float64) (FrameValues, error) {
	if math.IsNaN(height) || math.IsInf(height, 0) || height <= 0 {
		return FrameValues{}, &DomainError{Reason: fmt.Sprintf("invalid height %g", height)}
	}

	rwls := make([]float64, len(distances))
	for i, d := range distances {
		frame := i + 1
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return FrameValues{}, &DomainError{Reason: fmt.Sprintf("invalid distance %g", d), Frame: frame}
		}
		rwl := RWL(d, height)
		if rwl == 0 {
			return FrameValues{}, &DomainError{Reason: "zero RWL", Frame: frame}
		}
		rwls[i] = rwl
	}
	return NewFrameValues(rwls), nil
}

// CalculateLI computes weight / RWL for every frame of rwl.
func CalculateLI(weight float64, rwl FrameValues) (FrameValues, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return FrameValues{}, &DomainError{Reason: fmt.Sprintf("invalid weight %g", weight)}
	}

	lis := make([]float64, rwl.Len())
	for i, r := range rwl.values {
		if r == 0 {
			return FrameValues{}, &DomainError{Reason: "zero RWL", Frame: i + 1}
		}
		lis[i] = weight / r
	}
	return NewFrameValues(lis), nil
}

// CalculateNIOSH returns RWL and LI for every frame, keyed 1..len(distances).
func CalculateNIOSH(weight float64, distances []float64, height float64) (rwl, li FrameValues, err error) {
	rwl, err = CalculateRWL(distances, height)
	if err != nil {
		return FrameValues{}, FrameValues{}, err
	}
	li, err = CalculateLI(weight, rwl)
	if err != nil {
		return FrameValues{}, FrameValues{}, err
	}
	return rwl, li, nil
}

// OutOfLimitFrames lists, in frame order, the frames where RWL reaches
// rwlLimit or LI exceeds 1.
func OutOfLimitFrames(rwl, li FrameValues, rwlLimit float64) []int {
	var out []int
	for frame := 1; frame <= rwl.Len(); frame++ {
		r, _ := rwl.Get(frame)
		l, ok := li.Get(frame)
		if r >= rwlLimit || (ok && l > 1.0) {
			out = append(out, frame)
		}
	}
	return out
}
