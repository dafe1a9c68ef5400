package lifting

import (
	"fmt"
	"math"
)

// Action strings written into the ActionMap.
const (
	ActionNone           = "No action required"
	ActionReduceWeight   = "Reduce weight or use lifting aid"
	ActionIncreaseSuffix = " or increase distance"
)

// DistanceSafetyMargin widens the inverted RWL distance by 20%.
const DistanceSafetyMargin = 1.2

// ActionMap maps frame numbers to a recommended action.
type ActionMap map[int]string

// Get returns the action for frame and whether one was recorded.
func (a ActionMap) Get(frame int) (string, bool) {
	s, ok := a[frame]
	return s, ok
}

// DistanceThreshold inverts the RWL ratio for a frame and adds the safety
// margin: ceil(height * (rwl / LoadConstant) * DistanceSafetyMargin).
func DistanceThreshold(height, rwl float64) float64 {
	return math.Ceil(height * (rwl / LoadConstant) * DistanceSafetyMargin)
}

// RecommendActions proposes an action for every frame of li.
//
// Frames with LI below 1 get ActionNone. Frames at or above 1 where the
// weight reaches RWL get ActionReduceWeight, extended with
// ActionIncreaseSuffix when the measured distance is under
// DistanceThreshold. Frames at or above 1 with the weight under RWL get no
// entry; they are returned in gaps so the report can show them. Because
// LI = weight/RWL, this only happens through floating point rounding.
func RecommendActions(weight float64, distances []float64, height float64, rwl, li FrameValues) (actions ActionMap, gaps []int, err error) {
	if rwl.Len() != li.Len() || len(distances) != li.Len() {
		return nil, nil, fmt.Errorf("mismatched series: %d distances, %d RWL, %d LI", len(distances), rwl.Len(), li.Len())
	}

	actions = make(ActionMap, li.Len())
	for frame := 1; frame <= li.Len(); frame++ {
		l, _ := li.Get(frame)
		if l < 1.0 {
			actions[frame] = ActionNone
			continue
		}

		r, _ := rwl.Get(frame)
		if weight < r {
			gaps = append(gaps, frame)
			continue
		}

		action := ActionReduceWeight
		if distances[frame-1] < DistanceThreshold(height, r) {
			action += ActionIncreaseSuffix
		}
		actions[frame] = action
	}
	return actions, gaps, nil
}
