package hypothesis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"hypotest/adapters/stats/inference"
	"hypotest/domain/analysis"
	"hypotest/domain/dataset"
	"hypotest/internal/errors"
)

// Long-format columns read by the ANOVA
const (
	GroupColumn = "group"
	ScoreColumn = "score"
)

// ANOVA is the one-way analysis of variance with post-hoc comparisons
type ANOVA struct{}

// NewANOVA creates the one-way ANOVA test
func NewANOVA() *ANOVA {
	return &ANOVA{}
}

// Name returns the catalog key
func (t *ANOVA) Name() string { return "anova" }

// DisplayName returns the user-facing test name
func (t *ANOVA) DisplayName() string { return "單因子變異數分析" }

// ResultPrefix returns the prefix used for result files
func (t *ANOVA) ResultPrefix() string { return "anova" }

// Run summarizes each group, picks standard or Welch ANOVA from the
// normality checks, and runs the matching post-hoc procedure only when the
// omnibus test is significant.
func (t *ANOVA) Run(ctx context.Context, frame *dataset.Frame) (*analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, errors.MissingRequiredColumns("columns \"group\" and \"score\" are required")
	}

	groups, err := frame.GroupedColumn(GroupColumn, ScoreColumn)
	if err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return nil, errors.DataInsufficient(fmt.Sprintf("anova needs at least two groups, got %d", len(groups)))
	}
	if err := requireObservations(groups); err != nil {
		return nil, err
	}

	ps, err := normality(groups)
	if err != nil {
		return nil, err
	}
	diag := diagnostics{normalityP: ps, leveneP: math.NaN()}
	method := chooseOmnibus(diag)

	values := make([][]float64, len(groups))
	summaries := make([]groupSummary, len(groups))
	for i, g := range groups {
		values[i] = g.Values
		summaries[i] = summarize(g)
	}

	omnibus, err := runOmnibus(method, values)
	if err != nil {
		return nil, err
	}
	o := outcome{method: method, p: omnibus.P}

	result := &analysis.Result{
		Test:     t.Name(),
		Decision: diag.decision(method),
		Table:    pretestTable(summaries, o),
		Nested:   true,
	}
	if !o.pValue().Significant() {
		return result, nil
	}

	rows, err := postHoc(method.PostHoc(), groups)
	if err != nil {
		return nil, err
	}
	result.PostHoc = posttestTable(rows, method.PostHoc())
	return result, nil
}

func runOmnibus(method analysis.Method, values [][]float64) (inference.ANOVAResult, error) {
	if method == analysis.MethodWelchANOVA {
		return inference.WelchANOVA(values...)
	}
	return inference.OneWayANOVA(values...)
}

// postHoc compares every pair of groups. Groups are visited in sorted label
// order, and each row names the higher-mean group first.
func postHoc(method analysis.Method, groups []analysis.Sample) ([]comparison, error) {
	sorted := append([]analysis.Sample(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	values := make([][]float64, len(sorted))
	for i, g := range sorted {
		values[i] = g.Values
	}

	var (
		pairs []inference.PairwiseResult
		err   error
	)
	switch method {
	case analysis.MethodGamesHowell:
		pairs, err = inference.GamesHowell(values...)
	case analysis.MethodTukeyHSD:
		pairs, err = inference.TukeyHSD(values...)
	default:
		return nil, fmt.Errorf("no post-hoc procedure for %q", method)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]comparison, len(pairs))
	for i, p := range pairs {
		rows[i] = orderPair(sorted[p.A].Name, sorted[p.B].Name, p.MeanA, p.MeanB, p.P)
	}
	return rows, nil
}
