package inference

import (
	"fmt"
	"math"
)

// LeveneResult holds the Levene W statistic and its p-value
type LeveneResult struct {
	W   float64
	P   float64
	DF1 float64
	DF2 float64
}

// Levene tests equality of variances across groups using absolute deviations
// from each group mean. With no within-group spread of the deviations W is
// +Inf (P = 0), or NaN for both when the groups are also indistinguishable.
func Levene(groups ...[]float64) (LeveneResult, error) {
	k := len(groups)
	if k < 2 {
		return LeveneResult{}, ErrTooFewGroups
	}

	total := 0
	z := make([][]float64, k)
	zMeans := make([]float64, k)
	for i, g := range groups {
		if len(g) == 0 {
			return LeveneResult{}, fmt.Errorf("levene group %d: %w", i, ErrEmptySample)
		}
		m := Mean(g)
		z[i] = make([]float64, len(g))
		for j, v := range g {
			z[i][j] = math.Abs(v - m)
		}
		zMeans[i] = Mean(z[i])
		total += len(g)
	}
	if total <= k {
		return LeveneResult{}, fmt.Errorf("levene needs more observations than groups: %w", ErrSampleSize)
	}

	var grand float64
	for i := range z {
		grand += zMeans[i] * float64(len(z[i]))
	}
	grand /= float64(total)

	var between, within float64
	for i := range z {
		d := zMeans[i] - grand
		between += float64(len(z[i])) * d * d
		for _, v := range z[i] {
			e := v - zMeans[i]
			within += e * e
		}
	}

	df1 := float64(k - 1)
	df2 := float64(total - k)
	res := LeveneResult{DF1: df1, DF2: df2}
	if within == 0 {
		if between == 0 {
			res.W, res.P = math.NaN(), math.NaN()
		} else {
			res.W, res.P = math.Inf(1), 0
		}
		return res, nil
	}
	res.W = (df2 / df1) * between / within
	res.P = FTestPValue(res.W, df1, df2)
	return res, nil
}
