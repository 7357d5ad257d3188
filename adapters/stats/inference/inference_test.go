package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// normalScores returns n evenly spaced normal quantiles scaled to mean/sd.
// They pass normality checks without depending on a random draw.
func normalScores(n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*NormalQuantile((float64(i+1)-0.375)/(float64(n)+0.25))
	}
	return out
}

var (
	sampleA = []float64{4.2, 5.1, 6.3, 5.8, 4.9, 6.7, 5.5, 4.4, 6.1, 5.0}
	sampleB = []float64{6.8, 7.9, 5.9, 8.4, 7.2, 9.1, 6.5, 8.8, 7.7, 6.9}
)

func TestShapiroWilk_Coefficients(t *testing.T) {
	a := shapiroCoefficients(10)
	// Published Shapiro-Wilk table values for n = 10
	assert.InDelta(t, 0.5739, a[9], 0.002)
	assert.InDelta(t, 0.3291, a[8], 0.003)
	assert.InDelta(t, -a[9], a[0], 1e-12)
	assert.InDelta(t, -a[8], a[1], 1e-12)

	var sumSq float64
	for _, v := range a {
		sumSq += v * v
	}
	assert.InDelta(t, 1.0, sumSq, 1e-9)
}

func TestShapiroWilk(t *testing.T) {
	res, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.W, 1e-12)
	assert.InDelta(t, 1.0, res.P, 1e-9)

	res, err = ShapiroWilk(normalScores(30, 50, 5))
	require.NoError(t, err)
	assert.Greater(t, res.W, 0.98)
	assert.Greater(t, res.P, 0.5)

	skewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 3, 5, 9, 40}
	res, err = ShapiroWilk(skewed)
	require.NoError(t, err)
	assert.Less(t, res.P, 0.01)

	res, err = ShapiroWilk([]float64{7, 7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.P)

	_, err = ShapiroWilk([]float64{1, 2})
	assert.True(t, errors.Is(err, ErrSampleSize))
	_, err = ShapiroWilk(nil)
	assert.True(t, errors.Is(err, ErrEmptySample))
}

func TestLevene_MatchesTTestOnDeviations(t *testing.T) {
	res, err := Levene(sampleA, sampleB)
	require.NoError(t, err)

	dev := func(xs []float64) []float64 {
		m := Mean(xs)
		out := make([]float64, len(xs))
		for i, v := range xs {
			out[i] = math.Abs(v - m)
		}
		return out
	}
	tt, err := StudentTTest(dev(sampleA), dev(sampleB))
	require.NoError(t, err)

	assert.InDelta(t, tt.Statistic*tt.Statistic, res.W, 1e-9)
	assert.InDelta(t, tt.P, res.P, 1e-9)
}

func TestLevene_DetectsUnequalSpread(t *testing.T) {
	res, err := Levene(normalScores(20, 0, 1), normalScores(20, 0, 10))
	require.NoError(t, err)
	assert.Less(t, res.P, 0.001)

	same, err := Levene(normalScores(20, 0, 3), normalScores(20, 100, 3))
	require.NoError(t, err)
	assert.Greater(t, same.P, 0.99)
}

func TestOneWayANOVA_TwoGroupsEqualsStudentT(t *testing.T) {
	res, err := OneWayANOVA(sampleA, sampleB)
	require.NoError(t, err)
	tt, err := StudentTTest(sampleA, sampleB)
	require.NoError(t, err)

	assert.InDelta(t, tt.Statistic*tt.Statistic, res.F, 1e-9)
	assert.InDelta(t, tt.P, res.P, 1e-9)
	assert.Equal(t, 1.0, res.DF1)
	assert.Equal(t, 18.0, res.DF2)
}

func TestWelchANOVA_TwoGroupsEqualsWelchT(t *testing.T) {
	wide := []float64{1.0, 9.5, 3.2, 12.1, 5.5, 0.4, 8.8, 2.2}
	res, err := WelchANOVA(sampleB, wide)
	require.NoError(t, err)
	tt, err := WelchTTest(sampleB, wide)
	require.NoError(t, err)

	assert.InDelta(t, tt.Statistic*tt.Statistic, res.F, 1e-9)
	assert.InDelta(t, tt.DF, res.DF2, 1e-9)
	assert.InDelta(t, tt.P, res.P, 1e-9)
}

func TestStudentizedRange_TableValues(t *testing.T) {
	// Upper 5% points of the studentized range
	assert.InDelta(t, 0.95, StudentizedRangeCDF(3.877, 3, 10), 0.002)
	assert.InDelta(t, 0.95, StudentizedRangeCDF(4.327, 4, 10), 0.002)
	assert.InDelta(t, 0.95, StudentizedRangeCDF(3.314, 3, 1e6), 0.002)

	// k = 2 reduces to the t distribution: P(Q <= q) = P(|T| <= q/sqrt2)
	q := 3.0
	tail := TTestPValue(q/math.Sqrt2, 12)
	assert.InDelta(t, tail, StudentizedRangePValue(q, 2, 12), 1e-4)

	assert.Equal(t, 0.0, StudentizedRangeCDF(0, 3, 10))
	assert.True(t, math.IsNaN(StudentizedRangeCDF(1, 1, 10)))
}

func TestTukeyHSD_TwoGroupsEqualsStudentT(t *testing.T) {
	pairs, err := TukeyHSD(sampleA, sampleB)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	tt, err := StudentTTest(sampleA, sampleB)
	require.NoError(t, err)
	assert.InDelta(t, tt.P, pairs[0].P, 1e-4)
	assert.InDelta(t, Mean(sampleA)-Mean(sampleB), pairs[0].Diff, 1e-12)
}

func TestGamesHowell_TwoGroupsEqualsWelchT(t *testing.T) {
	wide := []float64{1.0, 9.5, 3.2, 12.1, 5.5, 0.4, 8.8, 2.2}
	pairs, err := GamesHowell(sampleB, wide)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	tt, err := WelchTTest(sampleB, wide)
	require.NoError(t, err)
	assert.InDelta(t, tt.P, pairs[0].P, 1e-4)
	assert.InDelta(t, tt.DF, pairs[0].DF, 1e-9)
}

func TestPostHoc_PairOrder(t *testing.T) {
	groups := [][]float64{normalScores(10, 10, 1), normalScores(10, 20, 1), normalScores(10, 30, 1)}
	pairs, err := TukeyHSD(groups...)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	expected := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	for i, p := range pairs {
		assert.Equal(t, expected[i][0], p.A)
		assert.Equal(t, expected[i][1], p.B)
		assert.Less(t, p.P, 0.001)
	}
}

func TestWilcoxonSignedRank_Exact(t *testing.T) {
	res, err := WilcoxonSignedRank([]float64{11, 12, 13, 14, 15}, []float64{10, 10, 10, 10, 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Statistic)
	assert.InDelta(t, 2.0/32.0, res.P, 1e-12)

	res, err = WilcoxonSignedRank([]float64{1, 0, 3, 0, 5}, []float64{0, 2, 0, 4, 0})
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Statistic)
	assert.InDelta(t, 26.0/32.0, res.P, 1e-12)
}

func TestWilcoxonSignedRank_Errors(t *testing.T) {
	_, err := WilcoxonSignedRank([]float64{1, 2}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrZeroDifferences))

	_, err = WilcoxonSignedRank([]float64{1, 2, 3}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrMismatchedLength))
}

func TestMannWhitneyU_SeparatedSamples(t *testing.T) {
	res, err := MannWhitneyU([]float64{1, 2, 3, 4, 5, 6}, []float64{11, 12, 13, 14, 15, 16})
	require.NoError(t, err)
	assert.Less(t, res.P, 0.05)
}

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, 1.6666666667, s.Variance, 1e-9)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}
