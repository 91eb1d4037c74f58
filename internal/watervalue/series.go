// Package watervalue estimates hydropower water values from paired price and
// production series, following the SAMBA/05/11 method: piecewise-constant
// segmentation of production, breakpoint validation against joint price and
// production movement, and estimation by the jump and minimum methods.
package watervalue

import (
	"errors"
	"sort"
	"time"
)

// DefaultStep is the resolution the series are aligned to before analysis.
const DefaultStep = 240 * time.Second

// ErrInsufficientData is returned when the aligned series is too short to
// segment.
var ErrInsufficientData = errors.New("insufficient series data")

// Point is one observation of a time series.
type Point struct {
	Time  time.Time
	Value float64
}

// Sample is one aligned observation of both series.
type Sample struct {
	Time       time.Time
	Price      float64
	Production float64
}

// Align resamples both series onto a common fixed-step grid. Timestamps are
// floored to the step, duplicate buckets averaged, and gaps filled forward
// then backward. The grid spans the overlap of both series.
func Align(price, production []Point, step time.Duration) ([]Sample, error) {
	if step <= 0 {
		step = DefaultStep
	}
	priceBuckets := bucketize(price, step)
	prodBuckets := bucketize(production, step)
	if len(priceBuckets) == 0 || len(prodBuckets) == 0 {
		return nil, ErrInsufficientData
	}

	start := maxTime(priceBuckets[0].Time, prodBuckets[0].Time)
	end := minTime(priceBuckets[len(priceBuckets)-1].Time, prodBuckets[len(prodBuckets)-1].Time)
	if end.Before(start) {
		return nil, ErrInsufficientData
	}

	n := int(end.Sub(start)/step) + 1
	samples := make([]Sample, n)
	prices := fillSeries(priceBuckets, start, step, n)
	prods := fillSeries(prodBuckets, start, step, n)
	for i := 0; i < n; i++ {
		samples[i] = Sample{
			Time:       start.Add(time.Duration(i) * step),
			Price:      prices[i],
			Production: prods[i],
		}
	}
	return samples, nil
}

// bucketize floors point times to the step and averages duplicates,
// returning points sorted by time.
func bucketize(points []Point, step time.Duration) []Point {
	sums := map[int64]float64{}
	counts := map[int64]int{}
	for _, p := range points {
		b := p.Time.Unix() - mod(p.Time.Unix(), int64(step/time.Second))
		sums[b] += p.Value
		counts[b]++
	}

	out := make([]Point, 0, len(sums))
	for b, s := range sums {
		out = append(out, Point{Time: time.Unix(b, 0).UTC(), Value: s / float64(counts[b])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// fillSeries projects bucketed points onto a dense grid, carrying the last
// observation forward and backfilling the leading gap.
func fillSeries(points []Point, start time.Time, step time.Duration, n int) []float64 {
	values := make([]float64, n)
	seen := make([]bool, n)
	for _, p := range points {
		i := int(p.Time.Sub(start) / step)
		if i >= 0 && i < n {
			values[i] = p.Value
			seen[i] = true
		}
	}

	last, hasLast := 0.0, false
	for i := 0; i < n; i++ {
		if seen[i] {
			last, hasLast = values[i], true
		} else if hasLast {
			values[i] = last
		}
	}
	// Backfill the leading gap from the first observation.
	for i := n - 1; i >= 0; i-- {
		if seen[i] {
			last = values[i]
		} else {
			values[i] = last
		}
	}
	return values
}

// ProductionLevel maps a production value to its interval index given
// strictly increasing limits. Intervals are right-closed: 0 at or below the
// first limit, len(limits) above the last.
func ProductionLevel(v float64, limits []float64) int {
	level := 0
	for _, l := range limits {
		if v > l {
			level++
		}
	}
	return level
}

// DefaultLimits derives production interval limits when none are configured:
// a single limit at 10% of installed capacity, or 50 MW when the capacity is
// unknown.
func DefaultLimits(maxInstalled float64) []float64 {
	if maxInstalled > 0 {
		return []float64{0.1 * maxInstalled}
	}
	return []float64{50}
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
