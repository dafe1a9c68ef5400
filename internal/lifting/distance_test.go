package lifting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/testutil"
)

func TestCentroid(t *testing.T) {
	sample := mocap.MarkerSample{
		"a": {X: 0, Y: 0, Z: 0},
		"b": {X: 2, Y: 4, Z: 6},
		"c": {X: 4, Y: 8, Z: 12},
	}
	got := lifting.Centroid(sample, []string{"a", "b", "c"})
	assert.Equal(t, mocap.Point3{X: 2, Y: 4, Z: 6}, got)
}

func TestManhattanDistance(t *testing.T) {
	a := mocap.Point3{X: 1, Y: -2, Z: 3}
	b := mocap.Point3{X: -1, Y: 2, Z: 0}
	assert.Equal(t, 9.0, lifting.ManhattanDistance(a, b))
	assert.Equal(t, 9.0, lifting.ManhattanDistance(b, a))
}

func TestExtractDistances(t *testing.T) {
	set := mocap.DefaultMarkerSet()
	series := testutil.LiftSeries(set, 5,
		mocap.Point3{X: 0, Y: 0, Z: 100},
		mocap.Point3{X: 30, Y: 10, Z: 20},
		mocap.Point3{X: 30, Y: 10, Z: 100},
	)

	distances, err := lifting.ExtractDistances(series, set)
	require.NoError(t, err)
	require.Len(t, distances, series.Len())

	// |30| + |10| + |z - 100| as the box rises 20 per frame
	assert.InDeltaSlice(t, []float64{120, 100, 80, 60, 40}, distances, 1e-9)
	for _, d := range distances {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestExtractDistancesUsesInjectedMarkers(t *testing.T) {
	set := mocap.MarkerSet{
		Body:           []string{"C7", "T10"},
		Box:            []string{"crateA", "crateB"},
		SpineReference: "T10",
		ObjectTop:      "crateA",
	}
	series := &mocap.FrameSeries{Frames: []mocap.Frame{{
		Number: 1,
		Markers: mocap.MarkerSample{
			"C7":     {X: 0, Y: 0, Z: 140},
			"T10":    {X: 0, Y: 0, Z: 100},
			"crateA": {X: 40, Y: 0, Z: 80},
			"crateB": {X: 40, Y: 20, Z: 80},
		},
	}}}

	distances, err := lifting.ExtractDistances(series, set)
	require.NoError(t, err)
	// body centroid (0,0,120), box centroid (40,10,80)
	assert.Equal(t, []float64{90}, distances)
}

func TestExtractDistancesMissingMarker(t *testing.T) {
	set := mocap.DefaultMarkerSet()
	series := testutil.StaticSeries(set, 3, mocap.Point3{Z: 100}, mocap.Point3{X: 30})
	delete(series.Frames[2].Markers, "solOmuz")

	_, err := lifting.ExtractDistances(series, set)
	var de *mocap.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "solOmuz", de.Marker)
	assert.Equal(t, 3, de.Frame)
}

func TestExtractDistancesEmpty(t *testing.T) {
	_, err := lifting.ExtractDistances(&mocap.FrameSeries{}, mocap.DefaultMarkerSet())
	assert.ErrorIs(t, err, mocap.ErrData)
}

func TestCalibrateHeight(t *testing.T) {
	set := mocap.DefaultMarkerSet()

	t.Run("half the object travel", func(t *testing.T) {
		series := testutil.LiftSeries(set, 10,
			mocap.Point3{Z: 100},
			mocap.Point3{X: 30, Z: 10},
			mocap.Point3{X: 30, Z: 70},
		)
		h, err := lifting.CalibrateHeight(series, set)
		require.NoError(t, err)
		assert.InDelta(t, 30.0, h, 1e-12)
	})

	t.Run("degenerate reference", func(t *testing.T) {
		series := testutil.LiftSeries(set, 3,
			mocap.Point3{Z: 0},
			mocap.Point3{X: 30, Z: 10},
			mocap.Point3{X: 30, Z: 70},
		)
		_, err := lifting.CalibrateHeight(series, set)
		var de *lifting.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "degenerate calibration reference", de.Reason)
	})

	t.Run("missing reference marker", func(t *testing.T) {
		series := testutil.StaticSeries(set, 2, mocap.Point3{Z: 100}, mocap.Point3{X: 30})
		delete(series.Frames[0].Markers, "omurga5")
		_, err := lifting.CalibrateHeight(series, set)
		assert.ErrorIs(t, err, mocap.ErrData)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := lifting.CalibrateHeight(&mocap.FrameSeries{}, set)
		assert.ErrorIs(t, err, mocap.ErrData)
	})
}
