package lifting

import (
	"errors"
	"fmt"

	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/monitoring"
)

// HeightSource selects the height term fed to the lifting equation.
type HeightSource string

const (
	// HeightCalibrated uses CalibrateHeight on the capture.
	HeightCalibrated HeightSource = "calibrated"
	// HeightSubject uses the subject's stated height.
	HeightSubject HeightSource = "subject"
)

// DefaultRWLLimit flags frames whose RWL reaches this many kilograms.
const DefaultRWLLimit = 51.0

// Params are the per-run subject inputs.
type Params struct {
	HeightCM int
	WeightKG int
}

// Validate rejects non-positive inputs, which would otherwise surface later
// as an invalid height or a meaningless LI.
func (p Params) Validate() error {
	if p.HeightCM <= 0 {
		return &DomainError{Reason: fmt.Sprintf("invalid height %d cm", p.HeightCM)}
	}
	if p.WeightKG <= 0 {
		return &DomainError{Reason: fmt.Sprintf("invalid weight %d kg", p.WeightKG)}
	}
	return nil
}

// Options configure an analysis run.
type Options struct {
	Markers      mocap.MarkerSet
	HeightSource HeightSource
	RWLLimit     float64
}

// DefaultOptions returns the options of the reference capture rig.
func DefaultOptions() Options {
	return Options{
		Markers:      mocap.DefaultMarkerSet(),
		HeightSource: HeightCalibrated,
		RWLLimit:     DefaultRWLLimit,
	}
}

// Analysis is the outcome of one run over a capture.
type Analysis struct {
	Params Params
	Frames []int

	Distances []float64
	// CalibratedHeight is the CalibrateHeight result, 0 when calibration was
	// not needed and failed.
	CalibratedHeight float64
	// EquationHeight is the height actually used for RWL.
	EquationHeight float64

	RWL FrameValues
	LI  FrameValues

	Interpretations []Interpretation
	LookupErrors    []LookupError

	Actions    ActionMap
	ActionGaps []int

	// OutOfLimit lists frames with RWL >= RWLLimit or LI > 1, in frame order.
	OutOfLimit []int
}

// Analyze runs the full per-frame assessment. Every stage except
// interpretation is fail-fast.
func Analyze(series *mocap.FrameSeries, params Params, opts Options) (*Analysis, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Markers.Validate(); err != nil {
		return nil, err
	}

	distances, err := ExtractDistances(series, opts.Markers)
	if err != nil {
		return nil, fmt.Errorf("distance extraction: %w", err)
	}

	a := &Analysis{
		Params:    params,
		Frames:    series.Numbers(),
		Distances: distances,
	}

	calibrated, calErr := CalibrateHeight(series, opts.Markers)
	switch opts.HeightSource {
	case HeightSubject:
		if calErr != nil {
			monitoring.Logf("height calibration skipped: %v", calErr)
		} else {
			a.CalibratedHeight = calibrated
		}
		a.EquationHeight = float64(params.HeightCM)
	case HeightCalibrated, "":
		if calErr != nil {
			return nil, fmt.Errorf("height calibration: %w", calErr)
		}
		a.CalibratedHeight = calibrated
		a.EquationHeight = calibrated
	default:
		return nil, fmt.Errorf("unknown height source %q", opts.HeightSource)
	}
	monitoring.Logf("height term %.2f (%s source, calibrated %.2f)", a.EquationHeight, heightSourceName(opts.HeightSource), a.CalibratedHeight)

	weight := float64(params.WeightKG)
	a.RWL, a.LI, err = CalculateNIOSH(weight, distances, a.EquationHeight)
	if err != nil {
		return nil, fmt.Errorf("lifting equation: %w", err)
	}

	a.Interpretations, a.LookupErrors = Interpret(a.LI, a.Frames)
	for _, in := range a.Interpretations {
		monitoring.Debugf("weight %dkg, %s", params.WeightKG, in)
	}
	for _, le := range a.LookupErrors {
		monitoring.Logf("%v", le)
	}

	a.Actions, a.ActionGaps, err = RecommendActions(weight, distances, float64(params.HeightCM), a.RWL, a.LI)
	if err != nil {
		return nil, fmt.Errorf("action recommendation: %w", err)
	}
	if len(a.ActionGaps) > 0 {
		monitoring.Logf("%d frames at or above LI 1.0 with weight under RWL have no action", len(a.ActionGaps))
	}

	limit := opts.RWLLimit
	if limit <= 0 {
		limit = DefaultRWLLimit
	}
	a.OutOfLimit = OutOfLimitFrames(a.RWL, a.LI, limit)
	monitoring.Logf("%d of %d frames out of limits", len(a.OutOfLimit), len(a.Frames))

	return a, nil
}

// IsDomainError reports whether err stems from a DomainError.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func heightSourceName(s HeightSource) string {
	if s == "" {
		return string(HeightCalibrated)
	}
	return string(s)
}
