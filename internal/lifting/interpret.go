package lifting

import "fmt"

// Band is the risk band of a single LI value.
type Band int

const (
	// BandAcceptable is LI < 1.
	BandAcceptable Band = iota
	// BandThreshold is LI exactly equal to 1. The comparison is exact on
	// purpose; with measured distances it almost never fires.
	BandThreshold
	// BandExceeds is LI > 1.
	BandExceeds
)

var bandNames = map[Band]string{
	BandAcceptable: "acceptable",
	BandThreshold:  "threshold",
	BandExceeds:    "exceeds limits",
}

func (b Band) String() string {
	if n, ok := bandNames[b]; ok {
		return n
	}
	return "unknown"
}

// Classify places li in exactly one band. NaN never reaches here because the
// calculator rejects every input that could produce it.
func Classify(li float64) Band {
	switch {
	case li < 1.0:
		return BandAcceptable
	case li == 1.0:
		return BandThreshold
	default:
		return BandExceeds
	}
}

// Interpretation is the band assigned to one frame.
type Interpretation struct {
	Frame int
	LI    float64
	Band  Band
}

func (i Interpretation) String() string {
	switch i.Band {
	case BandAcceptable:
		return fmt.Sprintf("frame %d: LI %.3f is below 1.0, task is acceptable", i.Frame, i.LI)
	case BandThreshold:
		return fmt.Sprintf("frame %d: LI %.3f is at 1.0, task is at the threshold", i.Frame, i.LI)
	default:
		return fmt.Sprintf("frame %d: LI %.3f is above 1.0, task exceeds recommended limits", i.Frame, i.LI)
	}
}

// Interpret classifies the LI of each requested frame. Frames with no LI are
// returned as LookupErrors; the remaining frames are still interpreted.
func Interpret(li FrameValues, frames []int) ([]Interpretation, []LookupError) {
	out := make([]Interpretation, 0, len(frames))
	var missing []LookupError
	for _, frame := range frames {
		v, ok := li.Get(frame)
		if !ok {
			missing = append(missing, LookupError{Frame: frame})
			continue
		}
		out = append(out, Interpretation{Frame: frame, LI: v, Band: Classify(v)})
	}
	return out, missing
}
