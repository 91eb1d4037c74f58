package watervalue

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepSamples builds a six hour series on the default grid: three hours of
// high production at a high price followed by three hours of low production
// at a low price. Both drop together, so the single breakpoint validates.
func stepSamples() []Sample {
	n := int(6*time.Hour/DefaultStep) + 1
	samples := make([]Sample, n)
	for i := range samples {
		s := Sample{Time: seriesStart.Add(time.Duration(i) * DefaultStep)}
		if i < n/2 {
			s.Price, s.Production = 60, 300
		} else {
			s.Price, s.Production = 30, 100
		}
		samples[i] = s
	}
	return samples
}

func TestEstimate_MinimumMethod(t *testing.T) {
	result, err := Estimate(stepSamples(), Options{
		Limits: []float64{50, 200},
		Method: MethodMinimum,
	})
	require.NoError(t, err)

	require.Len(t, result.WaterValues, 2)
	assert.InDelta(t, 30.0, result.WaterValues[0], 0.001)
	assert.InDelta(t, 60.0, result.WaterValues[1], 0.001)
	assert.Equal(t, 1, result.ValidBreakpoints)

	// Production of 300 MW sits above both limits, 100 MW above the first.
	assert.Equal(t, 2, result.Levels[0])
	assert.Equal(t, 1, result.Levels[len(result.Levels)-1])
}

func TestEstimate_JumpMethod(t *testing.T) {
	result, err := Estimate(stepSamples(), Options{
		Limits: []float64{50, 200},
		Method: MethodJump,
	})
	require.NoError(t, err)

	// The jump neighbourhood spans both levels, so only the higher interval
	// gets an estimate: the price before the drop.
	require.Len(t, result.WaterValues, 2)
	assert.True(t, math.IsNaN(result.WaterValues[0]))
	assert.InDelta(t, 60.0, result.WaterValues[1], 0.001)
}

func TestEstimate_BreakpointAgainstPriceDirection(t *testing.T) {
	// Production drops while the price rises; the candidate breakpoint must
	// not validate and the jump method yields nothing.
	samples := stepSamples()
	for i := range samples {
		if samples[i].Price == 30 {
			samples[i].Price = 90
		}
	}

	result, err := Estimate(samples, Options{
		Limits: []float64{50, 200},
		Method: MethodJump,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ValidBreakpoints)
	for _, v := range result.WaterValues {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEstimate_MonotonicAcrossLevels(t *testing.T) {
	result, err := Estimate(stepSamples(), Options{
		Limits: []float64{50, 200},
		Method: MethodMinimum,
	})
	require.NoError(t, err)

	prev := math.Inf(-1)
	for _, v := range result.WaterValues {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestEstimate_DerivedLimits(t *testing.T) {
	result, err := Estimate(stepSamples(), Options{MaxInstalled: 840})
	require.NoError(t, err)
	// One limit at 10% of installed capacity.
	assert.Len(t, result.WaterValues, 1)
}

func TestEstimate_TooFewSamples(t *testing.T) {
	_, err := Estimate(stepSamples()[:5], Options{})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestEstimate_TooShortSpan(t *testing.T) {
	_, err := Estimate(stepSamples()[:20], Options{})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestEstimate_UnknownMethod(t *testing.T) {
	_, err := Estimate(stepSamples(), Options{Method: "median"})
	require.Error(t, err)
}

func TestEstimate_DecreasingLimits(t *testing.T) {
	_, err := Estimate(stepSamples(), Options{Limits: []float64{200, 50}})
	require.Error(t, err)
}

func TestEnforceMonotonicIntervals(t *testing.T) {
	nan := math.NaN()
	lower, upper := enforceMonotonicIntervals(
		[]float64{10, nan, 5},
		[]float64{20, 15, nan},
	)

	assert.InDelta(t, 10.0, lower[0], 0.001)
	assert.InDelta(t, 20.0, upper[0], 0.001)
	// Missing bounds are filled from the other side, then raised to the
	// running maximum.
	assert.InDelta(t, 20.0, lower[1], 0.001)
	assert.InDelta(t, 20.0, upper[1], 0.001)
	assert.InDelta(t, 20.0, lower[2], 0.001)
	assert.InDelta(t, 20.0, upper[2], 0.001)
}
