package lifting_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lifting.report/internal/lifting"
)

func TestRWLScenario(t *testing.T) {
	// 180 cm subject, load 30 cm from the body
	rwl := lifting.RWL(30, 180)
	assert.InDelta(t, 15.07, rwl, 0.01)
	assert.InDelta(t, 23.58*math.Pow(30.0/180.0, 0.25), rwl, 1e-12)

	li := 20 / rwl
	assert.InDelta(t, 1.327, li, 0.001)
	assert.Equal(t, lifting.BandExceeds, lifting.Classify(li))

	light := 5 / rwl
	assert.InDelta(t, 0.332, light, 0.001)
	assert.Equal(t, lifting.BandAcceptable, lifting.Classify(light))
}

func TestCalculateNIOSH(t *testing.T) {
	distances := []float64{30, 60, 90}
	rwl, li, err := lifting.CalculateNIOSH(20, distances, 180)
	require.NoError(t, err)

	require.Equal(t, 3, rwl.Len())
	require.Equal(t, 3, li.Len())
	for frame := 1; frame <= 3; frame++ {
		r, ok := rwl.Get(frame)
		require.True(t, ok)
		l, ok := li.Get(frame)
		require.True(t, ok)
		assert.InDelta(t, lifting.RWL(distances[frame-1], 180), r, 1e-12)
		assert.InDelta(t, 20/r, l, 1e-9)
	}

	_, ok := rwl.Get(0)
	assert.False(t, ok, "frame 0 is not a frame")
	_, ok = li.Get(4)
	assert.False(t, ok)
}

func TestCalculateRWLDomainErrors(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		height    float64
		frame     int
		reason    string
	}{
		{"zero height", []float64{30}, 0, 0, "invalid height"},
		{"negative height", []float64{30}, -180, 0, "invalid height"},
		{"nan height", []float64{30}, math.NaN(), 0, "invalid height"},
		{"zero distance gives zero RWL", []float64{30, 0}, 180, 2, "zero RWL"},
		{"negative distance", []float64{30, 40, -1}, 180, 3, "invalid distance"},
		{"infinite distance", []float64{math.Inf(1)}, 180, 1, "invalid distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rwl, err := lifting.CalculateRWL(tt.distances, tt.height)
			require.Error(t, err)
			assert.Equal(t, 0, rwl.Len(), "no partial result on error")

			var de *lifting.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.frame, de.Frame)
			assert.Contains(t, de.Reason, tt.reason)
			assert.True(t, lifting.IsDomainError(err))
		})
	}
}

func TestCalculateLIDomainErrors(t *testing.T) {
	_, err := lifting.CalculateLI(20, lifting.NewFrameValues([]float64{10, 0}))
	var de *lifting.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "zero RWL", de.Reason)
	assert.Equal(t, 2, de.Frame)

	_, err = lifting.CalculateLI(-1, lifting.NewFrameValues([]float64{10}))
	assert.ErrorIs(t, err, lifting.ErrDomain)
}

func TestNIOSHProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		height := 50 + r.Float64()*200
		weight := r.Float64() * 40
		distances := make([]float64, 1+r.IntN(50))
		for j := range distances {
			distances[j] = 0.001 + r.Float64()*500
		}

		rwl, li, err := lifting.CalculateNIOSH(weight, distances, height)
		require.NoError(t, err)
		require.Equal(t, len(distances), rwl.Len())

		for frame := 1; frame <= rwl.Len(); frame++ {
			rv, _ := rwl.Get(frame)
			lv, _ := li.Get(frame)
			assert.Greater(t, rv, 0.0)
			assert.InDelta(t, weight/rv, lv, 1e-9)

			matches := 0
			if lv < 1.0 {
				matches++
			}
			if lv == 1.0 {
				matches++
			}
			if lv > 1.0 {
				matches++
			}
			assert.Equal(t, 1, matches, "LI %v must fall in exactly one band", lv)
		}
	}
}

func TestOutOfLimitFrames(t *testing.T) {
	rwl := lifting.NewFrameValues([]float64{15, 51, 60, 15, 50.99})
	li := lifting.NewFrameValues([]float64{1.3, 0.1, 0.1, 0.5, 1.0})

	got := lifting.OutOfLimitFrames(rwl, li, lifting.DefaultRWLLimit)
	assert.Equal(t, []int{1, 2, 3}, got)

	assert.Empty(t, lifting.OutOfLimitFrames(lifting.NewFrameValues(nil), lifting.NewFrameValues(nil), 51))
}

func TestFrameValues(t *testing.T) {
	src := []float64{1.5, 2.5}
	fv := lifting.NewFrameValues(src)

	assert.Equal(t, map[int]float64{1: 1.5, 2: 2.5}, fv.Map())

	vals := fv.Values()
	vals[0] = 99
	v, _ := fv.Get(1)
	assert.Equal(t, 1.5, v, "Values must return a copy")
}
