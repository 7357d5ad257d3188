package hypothesis

import (
	"hypotest/domain/analysis"
)

// outcome is the raw output of a test before it is reshaped into a table
type outcome struct {
	method analysis.Method
	p      float64
}

func (o outcome) pValue() analysis.PValue {
	return analysis.PValue(o.p)
}

// groupSummary is the per-group part of a result row
type groupSummary struct {
	name string
	n    int
	mean float64
}

func summarize(s analysis.Sample) groupSummary {
	return groupSummary{name: s.Name, n: s.Len(), mean: sampleMean(s)}
}

// comparison is one post-hoc pair, already ordered high before low
type comparison struct {
	high, low string
	diff      float64
	p         float64
}

// orderPair puts the group with the larger mean first. Equal means keep a first.
func orderPair(a, b string, meanA, meanB, p float64) comparison {
	if meanA >= meanB {
		return comparison{high: a, low: b, diff: meanA - meanB, p: p}
	}
	return comparison{high: b, low: a, diff: meanB - meanA, p: p}
}

// twoSampleTable builds the flat two-sample table. Levene p, method, p-value
// and the significance flag are carried by the first row only.
func twoSampleTable(groups [2]groupSummary, d diagnostics, o outcome) *analysis.Table {
	t := analysis.NewTable(
		analysis.ColGroup,
		analysis.ColSampleSize,
		analysis.ColMean,
		analysis.ColNormalityP,
		analysis.ColLeveneP,
		analysis.ColMethod,
		analysis.ColPValue,
		analysis.ColIsDiff,
	)
	for i, g := range groups {
		row := map[string]interface{}{
			analysis.ColGroup:      g.name,
			analysis.ColSampleSize: g.n,
			analysis.ColMean:       analysis.RoundOrNil(g.mean),
			analysis.ColNormalityP: analysis.RoundOrNil(d.normalityP[i]),
		}
		if i == 0 {
			row[analysis.ColLeveneP] = analysis.RoundOrNil(d.leveneP)
			row[analysis.ColMethod] = o.method.String()
			row[analysis.ColPValue] = o.pValue().Display()
			row[analysis.ColIsDiff] = o.pValue().Significant()
		}
		mustAddRow(t, row)
	}
	return t
}

// pretestTable builds the ANOVA group summary with the omnibus result on row 1
func pretestTable(groups []groupSummary, o outcome) *analysis.Table {
	t := analysis.NewTable(
		analysis.ColGroup,
		analysis.ColSampleSize,
		analysis.ColMean,
		analysis.ColPValue,
		analysis.ColIsDiff,
		analysis.ColMethod,
	)
	for i, g := range groups {
		row := map[string]interface{}{
			analysis.ColGroup:      g.name,
			analysis.ColSampleSize: g.n,
			analysis.ColMean:       analysis.RoundOrNil(g.mean),
		}
		if i == 0 {
			row[analysis.ColPValue] = o.pValue().Display()
			row[analysis.ColIsDiff] = o.pValue().Significant()
			row[analysis.ColMethod] = o.method.String()
		}
		mustAddRow(t, row)
	}
	return t
}

// posttestTable builds one row per pairwise comparison
func posttestTable(rows []comparison, method analysis.Method) *analysis.Table {
	t := analysis.NewTable(
		analysis.ColGroupHigh,
		analysis.ColGroupLow,
		analysis.ColMeanDifference,
		analysis.ColPValue,
		analysis.ColIsDiff,
		analysis.ColMethod,
	)
	for _, c := range rows {
		p := analysis.PValue(c.p)
		mustAddRow(t, map[string]interface{}{
			analysis.ColGroupHigh:      c.high,
			analysis.ColGroupLow:       c.low,
			analysis.ColMeanDifference: analysis.RoundOrNil(c.diff),
			analysis.ColPValue:         p.Display(),
			analysis.ColIsDiff:         p.Significant(),
			analysis.ColMethod:         method.String(),
		})
	}
	return t
}

// mustAddRow panics on unknown columns, which only a programming error in
// this package can produce.
func mustAddRow(t *analysis.Table, row map[string]interface{}) {
	if err := t.AddRow(row); err != nil {
		panic(err)
	}
}
