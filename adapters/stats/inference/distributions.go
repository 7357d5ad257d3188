package inference

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestPValue computes the two-tailed p-value of a t statistic. Degrees of
// freedom may be fractional (Welch-Satterthwaite).
func TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return math.NaN()
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return 2 * tDist.CDF(-math.Abs(tStatistic))
}

// FTestPValue computes the upper-tail p-value of an F statistic (ANOVA, Levene)
func FTestPValue(fStatistic, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return math.NaN()
	}
	if math.IsInf(fStatistic, 1) {
		return 0
	}
	if fStatistic <= 0 {
		return 1
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return 1 - fDist.CDF(fStatistic)
}

// NormalCDF computes cumulative distribution function for standard normal
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes quantile function for standard normal (inverse CDF)
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// TwoSidedNormalPValue is the two-tailed p-value of a z score
func TwoSidedNormalPValue(z float64) float64 {
	return 2 * NormalCDF(-math.Abs(z))
}

// Above this many degrees of freedom the studentized range uses the
// infinite-df limit.
const studentizedRangeMaxDF = 25000

// StudentizedRangeCDF returns P(Q <= q) for the studentized range of k means
// with df degrees of freedom for the variance estimate. df may be fractional
// (Games-Howell).
//
// P(Q <= q) = E_s[ W(q*s; k) ] with s = sqrt(chi2_df/df), evaluated on the
// probability scale of chi2 so the outer integral runs over (0, 1).
func StudentizedRangeCDF(q float64, k int, df float64) float64 {
	if k < 2 || df <= 0 || math.IsNaN(q) {
		return math.NaN()
	}
	if q <= 0 {
		return 0
	}
	if math.IsInf(q, 1) {
		return 1
	}
	if df > studentizedRangeMaxDF {
		return normalRangeCDF(q, k)
	}

	chi := distuv.ChiSquared{K: df}
	outer := func(p float64) float64 {
		s := math.Sqrt(chi.Quantile(p) / df)
		return normalRangeCDF(q*s, k)
	}
	return clampProbability(panelIntegral(outer, 0, 1, 16))
}

// StudentizedRangePValue returns the upper-tail probability P(Q > q)
func StudentizedRangePValue(q float64, k int, df float64) float64 {
	cdf := StudentizedRangeCDF(q, k, df)
	if math.IsNaN(cdf) {
		return cdf
	}
	return clampProbability(1 - cdf)
}

// normalRangeCDF is P(range of k iid standard normals <= w):
// k * integral phi(z) * (Phi(z+w) - Phi(z))^(k-1) dz.
func normalRangeCDF(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	inner := func(z float64) float64 {
		d := NormalCDF(z+w) - NormalCDF(z)
		if d <= 0 {
			return 0
		}
		return distuv.UnitNormal.Prob(z) * math.Pow(d, float64(k-1))
	}
	return clampProbability(float64(k) * panelIntegral(inner, -8.5, 8.5, 17))
}

// panelIntegral splits [a, b] into equal panels and applies a 20-point
// Gauss-Legendre rule on each. Nodes never touch the interval ends.
func panelIntegral(f func(float64) float64, a, b float64, panels int) float64 {
	width := (b - a) / float64(panels)
	var total float64
	for i := 0; i < panels; i++ {
		lo := a + float64(i)*width
		total += quad.Fixed(f, lo, lo+width, 20, quad.Legendre{}, 0)
	}
	return total
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
