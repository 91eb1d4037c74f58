package watervalue

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Estimation methods. The minimum method reads water values off price floors
// per production interval; the jump method reads them off validated
// breakpoint neighbourhoods.
const (
	MethodMinimum = "minimum"
	MethodJump    = "jump"
)

const (
	minSamples = 10
	minSpan    = 3 * time.Hour

	defaultStrictness = 0.5
	defaultJumpWindow = 60 * time.Minute
	defaultDiscardEnd = 60 * time.Minute

	// Neighbourhoods around validated breakpoints are masked before the
	// minimum method scans for price floors.
	bpMaskWindow = 59 * time.Minute
)

// Options control a single estimation run.
type Options struct {
	// Limits are strictly increasing production interval limits. When empty
	// they are derived from MaxInstalled.
	Limits       []float64
	MaxInstalled float64

	Method string // MethodMinimum or MethodJump, default minimum

	// Segments forces the piecewise-constant segment count. Zero selects it
	// automatically by the curvature criterion.
	Segments   int
	Strictness float64

	JumpWindow time.Duration
	DiscardEnd time.Duration
}

// Result holds one estimation run: a water value per production interval
// plus the per-sample diagnostics behind it.
type Result struct {
	// WaterValues has one entry per production limit. Entries are NaN when
	// no estimate could be made for that interval.
	WaterValues []float64

	// LevelMeans is the fitted segment mean per sample, Levels the
	// production interval each mean falls into.
	LevelMeans []float64
	Levels     []int

	// Breakpoints carries a code per sample: 0 none, 1 candidate,
	// 2 validated by joint price and production movement.
	Breakpoints []int

	ValidBreakpoints int
}

// Estimate runs the water value estimator over aligned samples.
func Estimate(samples []Sample, opts Options) (*Result, error) {
	n := len(samples)
	if n < minSamples {
		return nil, fmt.Errorf("%w: need %d samples, got %d", ErrInsufficientData, minSamples, n)
	}
	span := samples[n-1].Time.Sub(samples[0].Time)
	if span < minSpan {
		return nil, fmt.Errorf("%w: need %s span, got %s", ErrInsufficientData, minSpan, span)
	}

	limits := opts.Limits
	if len(limits) == 0 {
		limits = DefaultLimits(opts.MaxInstalled)
	}
	for i := 1; i < len(limits); i++ {
		if limits[i] <= limits[i-1] {
			return nil, errors.New("production limits must be strictly increasing")
		}
	}
	method := opts.Method
	if method == "" {
		method = MethodMinimum
	}
	if method != MethodMinimum && method != MethodJump {
		return nil, fmt.Errorf("unknown estimation method %q", method)
	}
	strictness := opts.Strictness
	if strictness == 0 {
		strictness = defaultStrictness
	}
	jumpWindow := opts.JumpWindow
	if jumpWindow <= 0 {
		jumpWindow = defaultJumpWindow
	}
	discardEnd := opts.DiscardEnd
	if discardEnd < 0 {
		discardEnd = defaultDiscardEnd
	}

	production := make([]float64, n)
	for i, s := range samples {
		production[i] = s.Production
	}
	means, flags, err := segment(production, opts.Segments, strictness)
	if err != nil {
		return nil, err
	}

	levels := make([]int, n)
	for i, mu := range means {
		levels[i] = ProductionLevel(mu, limits)
	}

	valid := validateBreakpoints(samples, levels, flags, jumpWindow)

	nWV := len(limits)
	var waterValues []float64
	switch method {
	case MethodJump:
		waterValues = jumpMethod(samples, levels, valid, nWV, jumpWindow)
	default:
		waterValues = minimumMethod(samples, levels, valid, nWV, discardEnd)
	}

	return &Result{
		WaterValues:      waterValues,
		LevelMeans:       means,
		Levels:           levels,
		Breakpoints:      flags,
		ValidBreakpoints: len(valid),
	}, nil
}

// validateBreakpoints keeps candidate breakpoints whose surrounding window
// shows price and production level moving in the same direction. Kept
// breakpoints are upgraded in flags and returned as sample indices.
func validateBreakpoints(samples []Sample, levels, flags []int, window time.Duration) []int {
	var valid []int
	for i, flag := range flags {
		if flag != bpCandidate {
			continue
		}
		lo, hi := windowRange(samples, samples[i].Time, window)
		if lo > hi {
			continue
		}
		priceChange := samples[hi].Price - samples[lo].Price
		levelChange := float64(levels[hi] - levels[lo])
		if priceChange*levelChange > 0 {
			flags[i] = bpValidated
			valid = append(valid, i)
		}
	}
	return valid
}

// jumpMethod derives one candidate interval per validated breakpoint on the
// final day of the series and keeps the narrowest per production level. The
// point estimate is the interval's upper bound.
func jumpMethod(samples []Sample, levels []int, valid []int, nWV int, window time.Duration) []float64 {
	lower := nanSlice(nWV)
	upper := nanSlice(nWV)
	if len(valid) == 0 {
		return upper
	}

	lastDay := samples[len(samples)-1].Time.Truncate(24 * time.Hour)
	bestWidth := nanSlice(nWV)

	for _, i := range valid {
		if !samples[i].Time.Truncate(24 * time.Hour).Equal(lastDay) {
			continue
		}
		lo, hi := windowRange(samples, samples[i].Time, window)
		if lo > hi {
			continue
		}

		level := 0
		lowPrice, highPrice := math.Inf(1), math.Inf(-1)
		for j := lo; j <= hi; j++ {
			if levels[j] > level {
				level = levels[j]
			}
			lowPrice = math.Min(lowPrice, samples[j].Price)
			highPrice = math.Max(highPrice, samples[j].Price)
		}
		if level <= 0 || level > nWV {
			continue
		}

		width := highPrice - lowPrice
		idx := level - 1
		if math.IsNaN(bestWidth[idx]) || width < bestWidth[idx] ||
			(width == bestWidth[idx] && highPrice < upper[idx]) {
			bestWidth[idx] = width
			lower[idx] = lowPrice
			upper[idx] = highPrice
		}
	}

	_, upper = enforceMonotonicIntervals(lower, upper)
	return cumMax(upper)
}

// minimumMethod reads water values off the lowest price observed at each
// production level, with breakpoint neighbourhoods masked out and the tail
// of the series discarded.
func minimumMethod(samples []Sample, levels []int, valid []int, nWV int, discardEnd time.Duration) []float64 {
	n := len(samples)
	priceForMin := make([]float64, n)
	priceForMax := make([]float64, n)
	for i, s := range samples {
		priceForMin[i] = s.Price
		priceForMax[i] = s.Price
	}

	// Prices inside a validated jump neighbourhood belong to the transition,
	// not to either level.
	for _, i := range valid {
		lo, hi := windowRange(samples, samples[i].Time, bpMaskWindow)
		if lo > hi {
			continue
		}
		winMin, winMax := math.Inf(1), math.Inf(-1)
		for j := lo; j <= hi; j++ {
			winMin = math.Min(winMin, samples[j].Price)
			winMax = math.Max(winMax, samples[j].Price)
		}
		for j := lo; j <= hi; j++ {
			priceForMin[j] = winMax
			priceForMax[j] = winMin
		}
	}

	end := n
	if discardEnd > 0 {
		cutoff := samples[n-1].Time.Add(-discardEnd)
		if cutoff.After(samples[0].Time) {
			end = sort.Search(n, func(i int) bool { return samples[i].Time.After(cutoff) })
		}
	}
	if end == 0 {
		return nanSlice(nWV)
	}

	minPerLevel := map[int]float64{}
	maxPerLevel := map[int]float64{}
	for i := 0; i < end; i++ {
		level := levels[i]
		if level > 0 {
			if cur, ok := minPerLevel[level]; !ok || priceForMin[i] < cur {
				minPerLevel[level] = priceForMin[i]
			}
		}
		if cur, ok := maxPerLevel[level]; !ok || priceForMax[i] > cur {
			maxPerLevel[level] = priceForMax[i]
		}
	}

	lower := nanSlice(nWV)
	upper := nanSlice(nWV)
	for level, price := range minPerLevel {
		if level < 1 || level > nWV {
			continue
		}
		upper[level-1] = price

		// Lower bound from the highest price seen on any level below.
		floor := math.Inf(-1)
		for l, p := range maxPerLevel {
			if l < level && p > floor {
				floor = p
			}
		}
		if math.IsInf(floor, -1) {
			lower[level-1] = price
		} else {
			lower[level-1] = math.Min(price, floor)
		}
	}

	_, upper = enforceMonotonicIntervals(lower, upper)
	return cumMax(upper)
}

// enforceMonotonicIntervals adjusts interval bounds so that
// lower[0] <= upper[0] <= lower[1] <= ... across production levels.
func enforceMonotonicIntervals(lower, upper []float64) ([]float64, []float64) {
	runningMax := math.Inf(-1)
	for i := range upper {
		if math.IsNaN(upper[i]) && math.IsNaN(lower[i]) {
			continue
		}
		if math.IsNaN(upper[i]) {
			upper[i] = lower[i]
		}
		if math.IsNaN(lower[i]) {
			lower[i] = upper[i]
		}
		lower[i] = math.Max(lower[i], runningMax)
		if upper[i] < lower[i] {
			upper[i] = lower[i]
		}
		runningMax = math.Max(runningMax, upper[i])
	}
	return lower, upper
}

// cumMax replaces each non-NaN entry with the running maximum of the non-NaN
// entries before it.
func cumMax(values []float64) []float64 {
	running := math.Inf(-1)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		running = math.Max(running, v)
		values[i] = running
	}
	return values
}

// windowRange returns the inclusive sample index range within half of t.
// lo > hi means the window is empty.
func windowRange(samples []Sample, t time.Time, half time.Duration) (lo, hi int) {
	from, to := t.Add(-half), t.Add(half)
	lo = sort.Search(len(samples), func(i int) bool { return !samples[i].Time.Before(from) })
	hi = sort.Search(len(samples), func(i int) bool { return samples[i].Time.After(to) }) - 1
	return lo, hi
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
