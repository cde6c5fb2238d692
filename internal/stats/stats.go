// Package stats implements the numeric routines shared by the profiler and
// the analysis steps: single-pass moments, order statistics over a sorted
// copy, and pairwise-complete Pearson correlation accumulators.
package stats

import (
	"math"
	"sort"
)

// Summary holds single-pass aggregates over a numeric sample. Mean and
// standard deviation derive from the accumulated terms, so computing them
// never rescans the data.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Sum   float64
	SumSq float64
}

// Add folds one observation into the summary.
func (s *Summary) Add(x float64) {
	if s.Count == 0 || x < s.Min {
		s.Min = x
	}
	if s.Count == 0 || x > s.Max {
		s.Max = x
	}
	s.Sum += x
	s.SumSq += x * x
	s.Count++
}

// Mean returns the arithmetic mean, or 0 for an empty sample.
func (s Summary) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the population variance, or 0 for an empty sample.
func (s Summary) Variance() float64 {
	if s.Count == 0 {
		return 0
	}
	n := float64(s.Count)
	m := s.Sum / n
	v := s.SumSq/n - m*m
	// Guard against tiny negative values from floating point cancellation.
	if v < 0 {
		v = 0
	}
	return v
}

// StdDev returns the population standard deviation.
func (s Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Summarize folds a whole sample.
func Summarize(xs []float64) Summary {
	var s Summary
	for _, x := range xs {
		s.Add(x)
	}
	return s
}

// SortedCopy returns an ascending copy of xs, leaving xs untouched.
func SortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Percentile returns the p-th percentile (0..100) of an ascending sample
// using linear interpolation at rank p/100*(n-1). An empty sample yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median returns the 50th percentile of xs, sorting a copy.
func Median(xs []float64) float64 {
	return Percentile(SortedCopy(xs), 50)
}

// Quartiles returns Q1, the median, and Q3 of xs from a single sorted copy.
func Quartiles(xs []float64) (q1, med, q3 float64) {
	sorted := SortedCopy(xs)
	return Percentile(sorted, 25), Percentile(sorted, 50), Percentile(sorted, 75)
}

// PairAccumulator accumulates the terms of a Pearson correlation over the
// rows where both values are present. Feeding only complete pairs is what
// makes the resulting coefficient pairwise-complete.
type PairAccumulator struct {
	N     int
	SumX  float64
	SumY  float64
	SumXX float64
	SumYY float64
	SumXY float64
}

// Add folds one complete (x, y) observation.
func (a *PairAccumulator) Add(x, y float64) {
	a.N++
	a.SumX += x
	a.SumY += y
	a.SumXX += x * x
	a.SumYY += y * y
	a.SumXY += x * y
}

// Correlation returns the Pearson coefficient, or 0 when either variable has
// zero variance (including N < 2).
func (a PairAccumulator) Correlation() float64 {
	if a.N < 2 {
		return 0
	}
	n := float64(a.N)
	num := n*a.SumXY - a.SumX*a.SumY
	den := math.Sqrt((n*a.SumXX - a.SumX*a.SumX) * (n*a.SumYY - a.SumY*a.SumY))
	if den == 0 {
		return 0
	}
	return num / den
}

// Correlate is a convenience over PairAccumulator for two aligned samples.
// The slices must be the same length; rows are assumed complete.
func Correlate(xs, ys []float64) float64 {
	var acc PairAccumulator
	for i := range xs {
		acc.Add(xs[i], ys[i])
	}
	return acc.Correlation()
}
