package hypothesis

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"hypotest/adapters/stats/inference"
	"hypotest/domain/analysis"
	"hypotest/domain/dataset"
	"hypotest/internal/errors"
	"hypotest/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(name string, values []float64) analysis.Sample {
	return analysis.Sample{Name: name, Values: values}
}

func shift(values []float64, by float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v + by
	}
	return out
}

func TestChooseIndependent(t *testing.T) {
	tests := []struct {
		name     string
		diag     diagnostics
		expected analysis.Method
	}{
		{"all pass", diagnostics{normalityP: []float64{0.5, 0.5}, leveneP: 0.5}, analysis.MethodStudentT},
		{"first sample non-normal", diagnostics{normalityP: []float64{0.04999, 0.5}, leveneP: 0.5}, analysis.MethodMannWhitneyU},
		{"second sample non-normal", diagnostics{normalityP: []float64{0.5, 0.01}, leveneP: 0.5}, analysis.MethodMannWhitneyU},
		{"unequal variance", diagnostics{normalityP: []float64{0.5, 0.5}, leveneP: 0.04999}, analysis.MethodMannWhitneyU},
		{"boundary passes", diagnostics{normalityP: []float64{0.05, 0.05}, leveneP: 0.05}, analysis.MethodStudentT},
		{"undefined levene", diagnostics{normalityP: []float64{0.5, 0.5}, leveneP: math.NaN()}, analysis.MethodWelchT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chooseIndependent(tt.diag))
		})
	}
}

func TestChoosePaired(t *testing.T) {
	assert.Equal(t, analysis.MethodPairedT, choosePaired(diagnostics{normalityP: []float64{0.3, 0.8}, leveneP: 0.2}))
	assert.Equal(t, analysis.MethodWilcoxonSignedRank, choosePaired(diagnostics{normalityP: []float64{0.3, 0.01}, leveneP: 0.2}))
	assert.Equal(t, analysis.MethodWilcoxonSignedRank, choosePaired(diagnostics{normalityP: []float64{0.3, 0.8}, leveneP: 0.001}))
}

func TestChooseOmnibus(t *testing.T) {
	assert.Equal(t, analysis.MethodOneWayANOVA, chooseOmnibus(diagnostics{normalityP: []float64{0.3, 0.8, 0.1}}))
	assert.Equal(t, analysis.MethodWelchANOVA, chooseOmnibus(diagnostics{normalityP: []float64{0.3, 0.8, 0.02}}))
	assert.Equal(t, analysis.MethodTukeyHSD, analysis.MethodOneWayANOVA.PostHoc())
	assert.Equal(t, analysis.MethodGamesHowell, analysis.MethodWelchANOVA.PostHoc())
}

func TestIndependentTTest_SelectsParametricPath(t *testing.T) {
	frame := testkit.WideFrame(
		sample("control", testkit.NormalScores(20, 50, 5)),
		sample("treatment", testkit.NormalScores(20, 53, 5)),
	)

	res, err := NewIndependentTTest().Run(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, analysis.MethodStudentT, res.Decision.Method)
	assert.Equal(t, []bool{true, true}, res.Decision.NormalityPassed)
	assert.True(t, res.Decision.VarianceHomogeneous)
	assert.Equal(t, "t-test (Equal Var)", res.Table.Cell(0, analysis.ColMethod))
	assert.False(t, res.Post())
}

func TestIndependentTTest_FlipsToRankSum(t *testing.T) {
	control := sample("control", testkit.NormalScores(30, 50, 5))

	t.Run("non-normal sample", func(t *testing.T) {
		skewed := sample("treatment", shift(testkit.ExponentialScores(30, 5), 45))
		res, err := NewIndependentTTest().Run(context.Background(), testkit.WideFrame(control, skewed))
		require.NoError(t, err)
		assert.Equal(t, analysis.MethodMannWhitneyU, res.Decision.Method)
		assert.Equal(t, []bool{true, false}, res.Decision.NormalityPassed)
	})

	t.Run("unequal variance", func(t *testing.T) {
		wide := sample("treatment", testkit.NormalScores(30, 50, 25))
		res, err := NewIndependentTTest().Run(context.Background(), testkit.WideFrame(control, wide))
		require.NoError(t, err)
		assert.Equal(t, analysis.MethodMannWhitneyU, res.Decision.Method)
		assert.False(t, res.Decision.VarianceHomogeneous)
		assert.Equal(t, "Mann_Whitney U", res.Table.Cell(0, analysis.ColMethod))
	})
}

func TestIndependentTTest_SparseTable(t *testing.T) {
	frame := testkit.WideFrame(
		sample("A", testkit.NormalScores(20, 50, 5)),
		sample("B", testkit.NormalScores(20, 80, 5)),
	)
	res, err := NewIndependentTTest().Run(context.Background(), frame)
	require.NoError(t, err)

	tbl := res.Table
	assert.Equal(t, []string{"Group", "Sample Size", "Mean", "Normality p", "Levene p", "Method", "p-value", "is_diff"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "A", tbl.Cell(0, analysis.ColGroup))
	assert.Equal(t, 20, tbl.Cell(0, analysis.ColSampleSize))
	assert.Equal(t, 50.0, tbl.Cell(0, analysis.ColMean))
	assert.Equal(t, 80.0, tbl.Cell(1, analysis.ColMean))
	assert.Equal(t, analysis.BelowThresholdLabel, tbl.Cell(0, analysis.ColPValue))
	assert.Equal(t, true, tbl.Cell(0, analysis.ColIsDiff))
	assert.NotNil(t, tbl.Cell(1, analysis.ColNormalityP))

	for _, col := range []string{analysis.ColLeveneP, analysis.ColMethod, analysis.ColPValue, analysis.ColIsDiff} {
		assert.Nil(t, tbl.Cell(1, col), col)
		assert.Len(t, tbl.Column(col), 2, col)
	}

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded map[string][]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []interface{}{"< 0.05", nil}, decoded["p-value"])
}

func TestIndependentTTest_NonSignificantPValueIsNumeric(t *testing.T) {
	frame := testkit.WideFrame(
		sample("A", testkit.NormalScores(20, 50, 5)),
		sample("B", testkit.NormalScores(20, 50.5, 5)),
	)
	res, err := NewIndependentTTest().Run(context.Background(), frame)
	require.NoError(t, err)

	p, ok := res.Table.Cell(0, analysis.ColPValue).(float64)
	require.True(t, ok, "p-value above the threshold must stay numeric")
	assert.GreaterOrEqual(t, p, 0.05)
	assert.Equal(t, false, res.Table.Cell(0, analysis.ColIsDiff))
}

func TestIndependentTTest_Errors(t *testing.T) {
	ctx := context.Background()

	oneColumn := dataset.NewFrame([]string{"A"}, [][]string{{"1"}, {"2"}, {"3"}})
	_, err := NewIndependentTTest().Run(ctx, oneColumn)
	assert.Equal(t, errors.CodeInsufficientColumns, errors.GetCode(err))

	emptyColumn := dataset.NewFrame([]string{"A", "B"}, [][]string{{"1", "NA"}, {"2", ""}, {"3", "nan"}})
	_, err = NewIndependentTTest().Run(ctx, emptyColumn)
	assert.Equal(t, errors.CodeDataInsufficient, errors.GetCode(err))

	tooShort := dataset.NewFrame([]string{"A", "B"}, [][]string{{"1", "4"}, {"2", "5"}})
	_, err = NewIndependentTTest().Run(ctx, tooShort)
	assert.ErrorIs(t, err, inference.ErrSampleSize)
	assert.False(t, errors.IsAppError(err))
}

func TestPairedTTest(t *testing.T) {
	before := testkit.NormalScores(20, 50, 5)
	after := make([]float64, len(before))
	for i, v := range before {
		after[i] = v + 1 + 0.3*math.Sin(float64(i))
	}

	res, err := NewPairedTTest().Run(context.Background(), testkit.WideFrame(sample("before", before), sample("after", after)))
	require.NoError(t, err)
	assert.Equal(t, analysis.MethodPairedT, res.Decision.Method)
	assert.Equal(t, "Paired t-test", res.Table.Cell(0, analysis.ColMethod))
	assert.Equal(t, analysis.BelowThresholdLabel, res.Table.Cell(0, analysis.ColPValue))

	skewed := testkit.ExponentialScores(20, 5)
	res, err = NewPairedTTest().Run(context.Background(), testkit.WideFrame(sample("before", skewed), sample("after", shift(skewed, 2))))
	require.NoError(t, err)
	assert.Equal(t, analysis.MethodWilcoxonSignedRank, res.Decision.Method)
	assert.Equal(t, "Wilcoxon Signed-Rank", res.Table.Cell(0, analysis.ColMethod))
}

func TestPairedTTest_UnequalLengthsPropagateLibraryError(t *testing.T) {
	frame := testkit.WideFrame(
		sample("before", testkit.NormalScores(12, 50, 5)),
		sample("after", testkit.NormalScores(10, 52, 5)),
	)
	_, err := NewPairedTTest().Run(context.Background(), frame)
	require.Error(t, err)
	assert.ErrorIs(t, err, inference.ErrMismatchedLength)
}

func TestANOVA_SignificantProducesPostHoc(t *testing.T) {
	frame := testkit.NewANOVAGenerator(testkit.DefaultANOVAConfig(false, true)).Frame()

	res, err := NewANOVA().Run(context.Background(), frame)
	require.NoError(t, err)

	require.True(t, res.Post())
	assert.Equal(t, true, res.Table.Cell(0, analysis.ColIsDiff))
	assert.Equal(t, analysis.BelowThresholdLabel, res.Table.Cell(0, analysis.ColPValue))
	assert.Equal(t, []interface{}{"A", "B", "C"}, res.Table.Column(analysis.ColGroup))
	assert.Equal(t, 3, res.PostHoc.Len())

	anyDiff := false
	for _, v := range res.PostHoc.Column(analysis.ColIsDiff) {
		if v == true {
			anyDiff = true
		}
	}
	assert.True(t, anyDiff, "at least one pairwise comparison should differ")
	assertHighLowOrdering(t, res)
}

func TestANOVA_WelchDemoDataIsSignificant(t *testing.T) {
	frame := testkit.NewANOVAGenerator(testkit.DefaultANOVAConfig(true, true)).Frame()

	res, err := NewANOVA().Run(context.Background(), frame)
	require.NoError(t, err)
	require.True(t, res.Post())
	assertHighLowOrdering(t, res)
}

func TestANOVA_NearlyEqualMeansSkipsPostHoc(t *testing.T) {
	frame := testkit.GroupScoreFrame(
		sample("A", testkit.NormalScores(30, 50, 5)),
		sample("B", testkit.NormalScores(30, 51, 5)),
		sample("C", testkit.NormalScores(30, 50, 5)),
	)

	res, err := NewANOVA().Run(context.Background(), frame)
	require.NoError(t, err)

	assert.False(t, res.Post())
	assert.Nil(t, res.PostHoc)
	assert.Equal(t, false, res.Table.Cell(0, analysis.ColIsDiff))
	assert.Equal(t, "One-way ANOVA", res.Table.Cell(0, analysis.ColMethod))
	p, ok := res.Table.Cell(0, analysis.ColPValue).(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, p, 0.05)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["post"])
	assert.Contains(t, decoded, "pretest")
	assert.NotContains(t, decoded, "posttest")
}

func TestANOVA_GeneratedNonSignificantSkipsPostHoc(t *testing.T) {
	tests := []struct {
		name  string
		welch bool
	}{
		{"equal variances", false},
		{"unequal variances", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := testkit.NewANOVAGenerator(testkit.DefaultANOVAConfig(tt.welch, false)).Frame()

			res, err := NewANOVA().Run(context.Background(), frame)
			require.NoError(t, err)

			assert.False(t, res.Post())
			assert.Nil(t, res.PostHoc)
			assert.Equal(t, false, res.Table.Cell(0, analysis.ColIsDiff))
			p, ok := res.Table.Cell(0, analysis.ColPValue).(float64)
			require.True(t, ok)
			assert.GreaterOrEqual(t, p, 0.05)
		})
	}
}

func TestANOVA_PostHocOrdersByMean(t *testing.T) {
	tests := []struct {
		name     string
		groups   []analysis.Sample
		wantHigh string
		wantLow  string
	}{
		{
			name:     "A higher",
			groups:   []analysis.Sample{sample("A", testkit.NormalScores(20, 70, 3)), sample("B", testkit.NormalScores(20, 50, 3))},
			wantHigh: "A",
			wantLow:  "B",
		},
		{
			name:     "B higher",
			groups:   []analysis.Sample{sample("A", testkit.NormalScores(20, 50, 3)), sample("B", testkit.NormalScores(20, 70, 3))},
			wantHigh: "B",
			wantLow:  "A",
		},
		{
			name:     "B higher listed first",
			groups:   []analysis.Sample{sample("B", testkit.NormalScores(20, 70, 3)), sample("A", testkit.NormalScores(20, 50, 3))},
			wantHigh: "B",
			wantLow:  "A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewANOVA().Run(context.Background(), testkit.GroupScoreFrame(tt.groups...))
			require.NoError(t, err)
			require.True(t, res.Post())
			require.Equal(t, 1, res.PostHoc.Len())

			assert.Equal(t, tt.wantHigh, res.PostHoc.Cell(0, analysis.ColGroupHigh))
			assert.Equal(t, tt.wantLow, res.PostHoc.Cell(0, analysis.ColGroupLow))
			assert.Equal(t, 20.0, res.PostHoc.Cell(0, analysis.ColMeanDifference))
			assert.Equal(t, "Tukey_HSD", res.PostHoc.Cell(0, analysis.ColMethod))
			assertHighLowOrdering(t, res)
		})
	}
}

func TestANOVA_NonNormalGroupUsesWelch(t *testing.T) {
	frame := testkit.GroupScoreFrame(
		sample("A", testkit.NormalScores(30, 10, 2)),
		sample("B", testkit.NormalScores(30, 20, 2)),
		sample("C", shift(testkit.ExponentialScores(30, 2), 30)),
	)

	res, err := NewANOVA().Run(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, analysis.MethodWelchANOVA, res.Decision.Method)
	assert.Equal(t, "Welch ANOVA", res.Table.Cell(0, analysis.ColMethod))
	require.True(t, res.Post())
	for _, m := range res.PostHoc.Column(analysis.ColMethod) {
		assert.Equal(t, "Welch_GamesHowell", m)
	}
	assertHighLowOrdering(t, res)
}

func TestANOVA_Errors(t *testing.T) {
	ctx := context.Background()

	wide := testkit.WideFrame(sample("A", []float64{1, 2, 3}), sample("B", []float64{4, 5, 6}))
	_, err := NewANOVA().Run(ctx, wide)
	assert.Equal(t, errors.CodeMissingRequiredColumns, errors.GetCode(err))

	single := testkit.GroupScoreFrame(sample("A", []float64{1, 2, 3, 4}))
	_, err = NewANOVA().Run(ctx, single)
	assert.Equal(t, errors.CodeDataInsufficient, errors.GetCode(err))

	emptyGroup := dataset.NewFrame([]string{"group", "score"}, [][]string{
		{"A", "1"}, {"A", "2"}, {"A", "3"}, {"B", "NA"}, {"B", ""},
	})
	_, err = NewANOVA().Run(ctx, emptyGroup)
	assert.Equal(t, errors.CodeDataInsufficient, errors.GetCode(err))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame := testkit.NewANOVAGenerator(testkit.DefaultANOVAConfig(false, true)).Frame()
	for _, test := range NewCatalog().All() {
		_, err := test.Run(ctx, frame)
		assert.ErrorIs(t, err, context.Canceled, test.Name())
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()

	var names []string
	for _, test := range c.All() {
		names = append(names, test.Name())
	}
	assert.Equal(t, []string{"independentTtest", "pairedTtest", "anova"}, names)

	test, err := c.Lookup("anova")
	require.NoError(t, err)
	assert.Equal(t, "單因子變異數分析", test.DisplayName())
	assert.Equal(t, "anova", test.ResultPrefix())

	_, err = c.Lookup("chiSquare")
	assert.Equal(t, errors.CodeUnknownTest, errors.GetCode(err))

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "獨立樣本 t 檢定", entries[0].DisplayName)
	assert.Equal(t, "paired_t_test", entries[1].ResultPrefix)
}

// assertHighLowOrdering checks every post-hoc row against the pretest means
func assertHighLowOrdering(t *testing.T, res *analysis.Result) {
	t.Helper()
	means := make(map[string]float64)
	for i := 0; i < res.Table.Len(); i++ {
		means[res.Table.Cell(i, analysis.ColGroup).(string)] = res.Table.Cell(i, analysis.ColMean).(float64)
	}
	for i := 0; i < res.PostHoc.Len(); i++ {
		high := res.PostHoc.Cell(i, analysis.ColGroupHigh).(string)
		low := res.PostHoc.Cell(i, analysis.ColGroupLow).(string)
		diff := res.PostHoc.Cell(i, analysis.ColMeanDifference).(float64)
		assert.GreaterOrEqual(t, means[high], means[low], "row %d", i)
		assert.GreaterOrEqual(t, diff, 0.0, "row %d", i)
	}
}
