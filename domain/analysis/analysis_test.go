package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPValue_Display(t *testing.T) {
	assert.Equal(t, BelowThresholdLabel, PValue(0.04999).Display())
	assert.Equal(t, 0.5, PValue(0.5).Display())
	assert.Equal(t, 0.05, PValue(0.05).Display())
	assert.Equal(t, 0.13, PValue(0.1251).Display())
	assert.Nil(t, PValue(math.NaN()).Display())

	below, err := json.Marshal(PValue(0.04999))
	require.NoError(t, err)
	assert.Equal(t, `"< 0.05"`, string(below))

	above, err := json.Marshal(PValue(0.5))
	require.NoError(t, err)
	assert.Equal(t, `0.5`, string(above))
}

func TestMethod_String(t *testing.T) {
	assert.Equal(t, "Mann_Whitney U", MethodMannWhitneyU.String())
	assert.Equal(t, "t-test (Equal Var)", MethodStudentT.String())
	assert.Equal(t, "t-test (Unequal Var)", MethodWelchT.String())
	assert.Equal(t, "Welch_GamesHowell", MethodWelchANOVA.PostHoc().String())
	assert.Equal(t, "Tukey_HSD", MethodOneWayANOVA.PostHoc().String())
	assert.Equal(t, MethodUnknown, MethodPairedT.PostHoc())
	assert.Equal(t, "", Method(99).String())
	assert.False(t, MethodWilcoxonSignedRank.Parametric())
}

func TestTable_SparseRowsKeepColumnsUniform(t *testing.T) {
	table := NewTable(ColGroup, ColMean, ColMethod)
	require.NoError(t, table.AddRow(map[string]interface{}{ColGroup: "A", ColMean: 1.5, ColMethod: "Paired t-test"}))
	require.NoError(t, table.AddRow(map[string]interface{}{ColGroup: "B", ColMean: 2.0}))

	assert.Equal(t, 2, table.Len())
	for _, c := range table.Columns() {
		assert.Len(t, table.Column(c), 2, c)
	}
	assert.Nil(t, table.Cell(1, ColMethod))

	encoded, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"Group":["A","B"],"Mean":[1.5,2],"Method":["Paired t-test",null]}`, string(encoded))

	records := table.Records()
	require.Len(t, records, 2)
	value, present := records[1][ColMethod]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestTable_RejectsUnknownColumn(t *testing.T) {
	table := NewTable(ColGroup)
	assert.Error(t, table.AddRow(map[string]interface{}{"Median": 3.0}))
	assert.Equal(t, 0, table.Len())
}

func TestResult_NestedShape(t *testing.T) {
	pre := NewTable(ColGroup)
	require.NoError(t, pre.AddRow(map[string]interface{}{ColGroup: "A"}))

	res := &Result{Table: pre, Nested: true}
	encoded, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"post":false,"pretest":{"Group":["A"]}}`, string(encoded))

	res.PostHoc = NewTable(ColGroupHigh)
	encoded, err = json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"post":true,"pretest":{"Group":["A"]},"posttest":{"Group_High":[]}}`, string(encoded))
}
