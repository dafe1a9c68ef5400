// Package lifting computes the simplified NIOSH lifting assessment for a
// motion-capture series: the body-to-load distance per frame, the calibrated
// height, RWL and LI, the risk band of each frame and a corrective action.
package lifting

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lifting.report/internal/mocap"
)

// Centroid is the arithmetic mean position of the named markers in one frame.
func Centroid(sample mocap.MarkerSample, names []string) mocap.Point3 {
	xs := make([]float64, len(names))
	ys := make([]float64, len(names))
	zs := make([]float64, len(names))
	for i, n := range names {
		p := sample[n]
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return mocap.Point3{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
		Z: stat.Mean(zs, nil),
	}
}

// ManhattanDistance is |dx| + |dy| + |dz|.
func ManhattanDistance(a, b mocap.Point3) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y) + math.Abs(b.Z-a.Z)
}

// ExtractDistances returns, for every frame, the L1 distance between the body
// centroid and the box centroid. distances[i] belongs to frame i+1.
//
// The series is validated against set first so a missing marker is reported
// by name and frame before any arithmetic runs.
func ExtractDistances(series *mocap.FrameSeries, set mocap.MarkerSet) ([]float64, error) {
	if err := series.Validate(set); err != nil {
		return nil, err
	}

	distances := make([]float64, series.Len())
	for i, f := range series.Frames {
		body := Centroid(f.Markers, set.Body)
		box := Centroid(f.Markers, set.Box)
		distances[i] = ManhattanDistance(body, box)
	}
	return distances, nil
}
