package lifting

import (
	"github.com/banshee-data/lifting.report/internal/mocap"
)

// CalibrateHeight derives the height term of the lifting equation from the
// capture alone.
//
// zRef is the spine reference Z at the first frame and the object top's
// vertical travel is taken between the first and last frames. The formula
// ((end-start) * (zRef/2)) / zRef cancels zRef algebraically; it is kept in
// this form because zRef stands in for a per-subject scale that a real
// calibration would replace, and the zero check must stay in place for it.
func CalibrateHeight(series *mocap.FrameSeries, set mocap.MarkerSet) (float64, error) {
	if series.Len() == 0 {
		return 0, &mocap.DataError{Reason: "empty frame series"}
	}
	last := series.Len() - 1

	ref, err := series.Marker(0, set.SpineReference)
	if err != nil {
		return 0, err
	}
	topStart, err := series.Marker(0, set.ObjectTop)
	if err != nil {
		return 0, err
	}
	topEnd, err := series.Marker(last, set.ObjectTop)
	if err != nil {
		return 0, err
	}

	zRef := ref.Z
	if zRef == 0 {
		return 0, &DomainError{Reason: "degenerate calibration reference", Frame: series.Frames[0].Number}
	}
	scale := zRef / 2
	return ((topEnd.Z - topStart.Z) * scale) / zRef, nil
}
