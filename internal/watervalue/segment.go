package watervalue

import (
	"fmt"
	"math"
)

// maxSegments caps the dynamic program regardless of series length.
const maxSegments = 24

// Breakpoint codes attached to each sample after segmentation and
// validation.
const (
	bpNone      = 0
	bpCandidate = 1
	bpValidated = 2
)

// sseCosts precomputes prefix sums so the residual sum of squares of any
// contiguous range can be read off in constant time.
type sseCosts struct {
	sum []float64
	sq  []float64
}

func newSSECosts(values []float64) *sseCosts {
	n := len(values)
	c := &sseCosts{
		sum: make([]float64, n+1),
		sq:  make([]float64, n+1),
	}
	for i, v := range values {
		c.sum[i+1] = c.sum[i] + v
		c.sq[i+1] = c.sq[i] + v*v
	}
	return c
}

// cost returns the SSE of fitting one constant over values[i..j] inclusive.
func (c *sseCosts) cost(i, j int) float64 {
	s := c.sum[j+1] - c.sum[i]
	sq := c.sq[j+1] - c.sq[i]
	length := float64(j - i + 1)
	return sq - s*s/length
}

// segment fits an optimal piecewise-constant curve to the values by dynamic
// programming over SSE costs. It returns the fitted mean per sample and a
// breakpoint flag per sample, where a flag marks the first sample of a new
// segment. When nsegments is zero the segment count is chosen by the
// curvature criterion with the given strictness.
func segment(values []float64, nsegments int, strictness float64) (means []float64, flags []int, err error) {
	n := len(values)
	if n == 0 {
		return nil, nil, ErrInsufficientData
	}
	kmax := maxSegments
	if n < kmax {
		kmax = n
	}
	if nsegments != 0 && (nsegments < 1 || nsegments > kmax) {
		return nil, nil, fmt.Errorf("segment count %d out of range [1, %d]", nsegments, kmax)
	}

	costs := newSSECosts(values)

	// dp[k][j] is the best cost of covering values[0..j] with k+1 segments,
	// prev[k][j] the end of the previous segment on that path.
	dp := make([][]float64, kmax)
	prev := make([][]int, kmax)
	for k := range dp {
		dp[k] = make([]float64, n)
		prev[k] = make([]int, n)
		for j := range dp[k] {
			dp[k][j] = math.Inf(1)
			prev[k][j] = -1
		}
	}
	for j := 0; j < n; j++ {
		dp[0][j] = costs.cost(0, j)
	}
	for k := 1; k < kmax; k++ {
		for j := k; j < n; j++ {
			best, bestIdx := math.Inf(1), -1
			for i := k - 1; i < j; i++ {
				if candidate := dp[k-1][i] + costs.cost(i+1, j); candidate < best {
					best, bestIdx = candidate, i
				}
			}
			dp[k][j] = best
			prev[k][j] = bestIdx
		}
	}

	totals := make([]float64, kmax)
	for k := 0; k < kmax; k++ {
		totals[k] = dp[k][n-1]
	}
	kSelect := nsegments
	if kSelect == 0 {
		kSelect = segSelect(totals, strictness)
	}

	// Walk the path backwards to recover segment endpoints.
	endpoints := make([]int, 0, kSelect)
	j := n - 1
	for k := kSelect - 1; k >= 0; k-- {
		endpoints = append(endpoints, j)
		if k == 0 {
			break
		}
		j = prev[k][j]
	}
	for l, r := 0, len(endpoints)-1; l < r; l, r = l+1, r-1 {
		endpoints[l], endpoints[r] = endpoints[r], endpoints[l]
	}

	means = make([]float64, n)
	endFlags := make([]int, n)
	start := 0
	for _, end := range endpoints {
		mu := (costs.sum[end+1] - costs.sum[start]) / float64(end-start+1)
		for i := start; i <= end; i++ {
			means[i] = mu
		}
		endFlags[end] = bpCandidate
		start = end + 1
	}

	// A breakpoint belongs to the first sample after the jump.
	flags = make([]int, n)
	copy(flags[1:], endFlags[:n-1])
	return means, flags, nil
}

// segSelect picks the segment count by normalizing the cost curve and
// returning the last point whose discrete curvature meets the strictness
// threshold.
func segSelect(totals []float64, strictness float64) int {
	kmax := len(totals)
	if kmax <= 1 {
		return 1
	}
	denom := totals[kmax-1] - totals[0]
	if math.Abs(denom) < 1e-12 {
		return 1
	}

	norm := make([]float64, kmax)
	for k, t := range totals {
		norm[k] = float64(kmax-1)*(totals[kmax-1]-t)/denom + 1
	}
	selected := 1
	for k := 0; k+2 < kmax; k++ {
		curvature := norm[k+2] - 2*norm[k+1] + norm[k]
		if curvature >= strictness {
			selected = k + 2
		}
	}
	return selected
}
