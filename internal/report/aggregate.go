// Package report turns a lifting analysis into per-second rows and renders
// them as a PDF document, with an optional interactive HTML chart.
package report

import (
	"fmt"

	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/mocap"
)

// DefaultFramesPerSecond is the capture rate of the reference rig.
const DefaultFramesPerSecond = 120

// NoActionRecorded fills the Action column when the recommender left a frame
// without an action.
const NoActionRecorded = "No action recorded"

// SecondRow is one line of the report table.
type SecondRow struct {
	Second      int
	Action      string
	ErrorFrames int
	// ErrorPercentage is ErrorFrames over the full window size, so a short
	// final second is not inflated.
	ErrorPercentage float64
}

// SecondOf maps a 1-based frame to its 1-based second. Frames 1..fps are
// second 1, fps+1..2*fps second 2, and so on.
func SecondOf(frame, fps int) int {
	s := (frame + fps - 1) / fps
	if s < 1 {
		return 1
	}
	return s
}

// Window returns the first and last frame of second s.
func Window(s, fps int) (first, last int) {
	return (s-1)*fps + 1, s * fps
}

// Aggregate buckets the out-of-limit frames into seconds.
//
// Rows appear once per second, in the order the seconds are first reached
// while walking outOfLimit. Each row takes the action of the first
// out-of-limit frame met in that second.
func Aggregate(outOfLimit []int, actions lifting.ActionMap, totalFrames, fps int) ([]SecondRow, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("frames per second must be positive, got %d", fps)
	}

	perSecond := make(map[int]int)
	counted := make(map[int]bool, len(outOfLimit))
	for _, f := range outOfLimit {
		if f < 1 || f > totalFrames {
			return nil, &mocap.DataError{
				Reason: fmt.Sprintf("out-of-limit frame outside capture of %d frames", totalFrames),
				Frame:  f,
			}
		}
		if counted[f] {
			continue
		}
		counted[f] = true
		perSecond[SecondOf(f, fps)]++
	}

	seen := make(map[int]bool)
	rows := make([]SecondRow, 0, len(perSecond))
	for _, f := range outOfLimit {
		s := SecondOf(f, fps)
		if seen[s] {
			continue
		}
		seen[s] = true

		action, ok := actions.Get(f)
		if !ok {
			action = NoActionRecorded
		}
		n := perSecond[s]
		rows = append(rows, SecondRow{
			Second:          s,
			Action:          action,
			ErrorFrames:     n,
			ErrorPercentage: float64(n) / float64(fps) * 100,
		})
	}
	return rows, nil
}
