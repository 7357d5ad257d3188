package inference

import (
	"fmt"
	"math"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"
)

// TestResult is the statistic and two-sided p-value of a two-sample test
type TestResult struct {
	Statistic float64
	DF        float64
	P         float64
}

// StudentTTest is the two-sample t-test assuming equal variances
func StudentTTest(x1, x2 []float64) (TestResult, error) {
	res, err := moremath.TwoSampleTTest(&moremath.Sample{Xs: x1}, &moremath.Sample{Xs: x2}, moremath.LocationDiffers)
	if err != nil {
		return TestResult{}, fmt.Errorf("student t-test: %w", err)
	}
	return TestResult{Statistic: res.T, DF: res.DoF, P: res.P}, nil
}

// WelchTTest is the two-sample t-test without the equal-variance assumption
func WelchTTest(x1, x2 []float64) (TestResult, error) {
	res, err := moremath.TwoSampleWelchTTest(&moremath.Sample{Xs: x1}, &moremath.Sample{Xs: x2}, moremath.LocationDiffers)
	if err != nil {
		return TestResult{}, fmt.Errorf("welch t-test: %w", err)
	}
	return TestResult{Statistic: res.T, DF: res.DoF, P: res.P}, nil
}

// PairedTTest tests whether the mean of x1-x2 differs from zero
func PairedTTest(x1, x2 []float64) (TestResult, error) {
	if len(x1) != len(x2) {
		return TestResult{}, fmt.Errorf("paired t-test (%d vs %d): %w", len(x1), len(x2), ErrMismatchedLength)
	}
	res, err := moremath.PairedTTest(x1, x2, 0, moremath.LocationDiffers)
	if err != nil {
		return TestResult{}, fmt.Errorf("paired t-test: %w", err)
	}
	return TestResult{Statistic: res.T, DF: res.DoF, P: res.P}, nil
}

// MannWhitneyU is the two-sided Wilcoxon rank-sum test
func MannWhitneyU(x1, x2 []float64) (TestResult, error) {
	res, err := moremath.MannWhitneyUTest(x1, x2, moremath.LocationDiffers)
	if err != nil {
		return TestResult{}, fmt.Errorf("mann-whitney u: %w", err)
	}
	return TestResult{Statistic: res.U, P: res.P}, nil
}

// Exact signed-rank distribution is used up to this many non-zero differences.
const wilcoxonExactMaxN = 50

// WilcoxonSignedRank tests whether paired differences are symmetric about
// zero. Zero differences are dropped. The statistic is min(W+, W-). Without
// ties and with at most 50 differences the p-value is exact; otherwise the
// normal approximation with tie correction is used.
func WilcoxonSignedRank(x1, x2 []float64) (TestResult, error) {
	if len(x1) != len(x2) {
		return TestResult{}, fmt.Errorf("wilcoxon signed-rank (%d vs %d): %w", len(x1), len(x2), ErrMismatchedLength)
	}

	diffs := make([]float64, 0, len(x1))
	for i := range x1 {
		if d := x1[i] - x2[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n == 0 {
		return TestResult{}, ErrZeroDifferences
	}

	abs := make([]float64, n)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, tieGroups := averageRanks(abs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	stat := math.Min(wPlus, wMinus)

	if n <= wilcoxonExactMaxN && len(tieGroups) == 0 {
		return TestResult{Statistic: stat, P: wilcoxonExactPValue(stat, n)}, nil
	}

	nf := float64(n)
	mean := nf * (nf + 1) / 4
	variance := nf * (nf + 1) * (2*nf + 1) / 24
	for _, t := range tieGroups {
		tf := float64(t)
		variance -= (tf*tf*tf - tf) / 48
	}
	if variance <= 0 {
		return TestResult{Statistic: stat, P: 1}, nil
	}
	z := (stat - mean) / math.Sqrt(variance)
	return TestResult{Statistic: stat, P: clampProbability(TwoSidedNormalPValue(z))}, nil
}

// wilcoxonExactPValue enumerates the null distribution of the
// signed-rank sum with dynamic programming over ranks 1..n.
func wilcoxonExactPValue(stat float64, n int) float64 {
	totalRankSum := n * (n + 1) / 2
	w := int(math.Round(stat))
	if w < 0 {
		w = 0
	}
	if w > totalRankSum {
		w = totalRankSum
	}

	// dp[s] counts sign assignments producing W+ = s
	dp := make([]float64, totalRankSum+1)
	dp[0] = 1
	for r := 1; r <= n; r++ {
		for s := totalRankSum; s >= r; s-- {
			dp[s] += dp[s-r]
		}
	}

	var cum float64
	for s := 0; s <= w; s++ {
		cum += dp[s]
	}
	pOneSide := cum / math.Pow(2, float64(n))
	return clampProbability(2 * pOneSide)
}

// averageRanks assigns 1-based ranks, averaging over ties. It also returns
// the size of every tie group with more than one member.
func averageRanks(values []float64) ([]float64, []int) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	var ties []int
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for m := i; m <= j; m++ {
			ranks[idx[m]] = avg
		}
		if j > i {
			ties = append(ties, j-i+1)
		}
		i = j + 1
	}
	return ranks, ties
}
