package inference

import (
	"fmt"
	"math"
)

// ANOVAResult holds an omnibus F test
type ANOVAResult struct {
	F   float64
	DF1 float64
	DF2 float64
	P   float64
}

type groupMoments struct {
	n        float64
	mean     float64
	variance float64
}

func moments(groups [][]float64, minN int) ([]groupMoments, error) {
	if len(groups) < 2 {
		return nil, ErrTooFewGroups
	}
	out := make([]groupMoments, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("group %d: %w", i, ErrEmptySample)
		}
		if len(g) < minN {
			return nil, fmt.Errorf("group %d has %d observations, need %d: %w", i, len(g), minN, ErrSampleSize)
		}
		s, err := Describe(g)
		if err != nil {
			return nil, err
		}
		out[i] = groupMoments{n: float64(s.N), mean: s.Mean, variance: s.Variance}
	}
	return out, nil
}

// OneWayANOVA is the classic between-groups F test assuming equal variances
func OneWayANOVA(groups ...[]float64) (ANOVAResult, error) {
	m, err := moments(groups, 1)
	if err != nil {
		return ANOVAResult{}, err
	}

	var total, grand float64
	for _, g := range m {
		total += g.n
		grand += g.n * g.mean
	}
	grand /= total

	k := float64(len(m))
	if total <= k {
		return ANOVAResult{}, fmt.Errorf("one-way anova needs more observations than groups: %w", ErrSampleSize)
	}

	var ssBetween, ssWithin float64
	for i, g := range m {
		d := g.mean - grand
		ssBetween += g.n * d * d
		for _, v := range groups[i] {
			e := v - g.mean
			ssWithin += e * e
		}
	}

	res := ANOVAResult{DF1: k - 1, DF2: total - k}
	msBetween := ssBetween / res.DF1
	msWithin := ssWithin / res.DF2
	switch {
	case msWithin == 0 && msBetween == 0:
		res.F, res.P = math.NaN(), math.NaN()
	case msWithin == 0:
		res.F, res.P = math.Inf(1), 0
	default:
		res.F = msBetween / msWithin
		res.P = FTestPValue(res.F, res.DF1, res.DF2)
	}
	return res, nil
}

// WelchANOVA is the heteroscedasticity-robust one-way ANOVA (Welch 1951)
func WelchANOVA(groups ...[]float64) (ANOVAResult, error) {
	m, err := moments(groups, 2)
	if err != nil {
		return ANOVAResult{}, err
	}

	k := float64(len(m))
	weights := make([]float64, len(m))
	var sumW, weightedMean float64
	for i, g := range m {
		if g.variance == 0 {
			return ANOVAResult{}, fmt.Errorf("welch anova: group %d has zero variance", i)
		}
		weights[i] = g.n / g.variance
		sumW += weights[i]
		weightedMean += weights[i] * g.mean
	}
	weightedMean /= sumW

	var a, tmp float64
	for i, g := range m {
		d := g.mean - weightedMean
		a += weights[i] * d * d
		r := 1 - weights[i]/sumW
		tmp += r * r / (g.n - 1)
	}
	a /= k - 1
	b := 1 + 2*(k-2)/(k*k-1)*tmp

	res := ANOVAResult{DF1: k - 1, DF2: (k*k - 1) / (3 * tmp)}
	res.F = a / b
	res.P = FTestPValue(res.F, res.DF1, res.DF2)
	return res, nil
}
