package inference

import (
	"fmt"
	"math"
)

// PairwiseResult is one post-hoc comparison between group A and group B.
// Diff is MeanA - MeanB and may be negative.
type PairwiseResult struct {
	A     int
	B     int
	MeanA float64
	MeanB float64
	Diff  float64
	SE    float64
	Q     float64
	DF    float64
	P     float64
}

// TukeyHSD compares every pair of groups (A < B by index) with the
// Tukey-Kramer procedure using the pooled within-group variance.
func TukeyHSD(groups ...[]float64) ([]PairwiseResult, error) {
	m, err := moments(groups, 1)
	if err != nil {
		return nil, err
	}

	k := len(m)
	var total, ssWithin float64
	for i, g := range m {
		total += g.n
		for _, v := range groups[i] {
			e := v - g.mean
			ssWithin += e * e
		}
	}
	df := total - float64(k)
	if df <= 0 {
		return nil, fmt.Errorf("tukey hsd needs more observations than groups: %w", ErrSampleSize)
	}
	msWithin := ssWithin / df

	var out []PairwiseResult
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			r := PairwiseResult{A: a, B: b, MeanA: m[a].mean, MeanB: m[b].mean, DF: df}
			r.Diff = r.MeanA - r.MeanB
			r.SE = math.Sqrt(msWithin / 2 * (1/m[a].n + 1/m[b].n))
			r.Q, r.P = studentizedComparison(r.Diff, r.SE, k, df)
			out = append(out, r)
		}
	}
	return out, nil
}

// GamesHowell compares every pair of groups without assuming equal variances,
// using Welch degrees of freedom per pair.
func GamesHowell(groups ...[]float64) ([]PairwiseResult, error) {
	m, err := moments(groups, 2)
	if err != nil {
		return nil, err
	}

	k := len(m)
	var out []PairwiseResult
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			va := m[a].variance / m[a].n
			vb := m[b].variance / m[b].n
			r := PairwiseResult{A: a, B: b, MeanA: m[a].mean, MeanB: m[b].mean}
			r.Diff = r.MeanA - r.MeanB
			r.DF = (va + vb) * (va + vb) / (va*va/(m[a].n-1) + vb*vb/(m[b].n-1))
			// q = sqrt(2)*|t| with t = diff / sqrt(va + vb)
			r.SE = math.Sqrt((va + vb) / 2)
			r.Q, r.P = studentizedComparison(r.Diff, r.SE, k, r.DF)
			out = append(out, r)
		}
	}
	return out, nil
}

func studentizedComparison(diff, se float64, k int, df float64) (float64, float64) {
	if se == 0 {
		if diff == 0 {
			return math.NaN(), math.NaN()
		}
		return math.Inf(1), 0
	}
	q := math.Abs(diff) / se
	return q, StudentizedRangePValue(q, k, df)
}
