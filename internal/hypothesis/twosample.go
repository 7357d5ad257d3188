package hypothesis

import (
	"context"
	"fmt"

	"hypotest/adapters/stats/inference"
	"hypotest/domain/analysis"
	"hypotest/domain/dataset"
	"hypotest/internal/errors"
)

// IndependentTTest compares two independent samples taken from the first two columns
type IndependentTTest struct{}

// NewIndependentTTest creates the independent two-sample test
func NewIndependentTTest() *IndependentTTest {
	return &IndependentTTest{}
}

// Name returns the catalog key
func (t *IndependentTTest) Name() string { return "independentTtest" }

// DisplayName returns the user-facing test name
func (t *IndependentTTest) DisplayName() string { return "獨立樣本 t 檢定" }

// ResultPrefix returns the prefix used for result files
func (t *IndependentTTest) ResultPrefix() string { return "independent_t_test" }

// Run checks normality and variance homogeneity, then runs Mann-Whitney U,
// the pooled t-test or Welch's t-test.
func (t *IndependentTTest) Run(ctx context.Context, frame *dataset.Frame) (*analysis.Result, error) {
	return runTwoSample(ctx, t.Name(), frame, chooseIndependent, func(m analysis.Method, a, b []float64) (inference.TestResult, error) {
		switch m {
		case analysis.MethodMannWhitneyU:
			return inference.MannWhitneyU(a, b)
		case analysis.MethodStudentT:
			return inference.StudentTTest(a, b)
		case analysis.MethodWelchT:
			return inference.WelchTTest(a, b)
		}
		return inference.TestResult{}, fmt.Errorf("independent test cannot run %q", m)
	})
}

// PairedTTest compares two paired measurements taken from the first two columns
type PairedTTest struct{}

// NewPairedTTest creates the paired two-sample test
func NewPairedTTest() *PairedTTest {
	return &PairedTTest{}
}

// Name returns the catalog key
func (t *PairedTTest) Name() string { return "pairedTtest" }

// DisplayName returns the user-facing test name
func (t *PairedTTest) DisplayName() string { return "成對樣本 t 檢定" }

// ResultPrefix returns the prefix used for result files
func (t *PairedTTest) ResultPrefix() string { return "paired_t_test" }

// Run applies the same diagnostics as the independent test and runs either
// the Wilcoxon signed-rank test or the paired t-test. Missing values are
// dropped per column, so columns of unequal length fail in the library.
func (t *PairedTTest) Run(ctx context.Context, frame *dataset.Frame) (*analysis.Result, error) {
	return runTwoSample(ctx, t.Name(), frame, choosePaired, func(m analysis.Method, a, b []float64) (inference.TestResult, error) {
		switch m {
		case analysis.MethodWilcoxonSignedRank:
			return inference.WilcoxonSignedRank(a, b)
		case analysis.MethodPairedT:
			return inference.PairedTTest(a, b)
		}
		return inference.TestResult{}, fmt.Errorf("paired test cannot run %q", m)
	})
}

type twoSampleRunner func(m analysis.Method, a, b []float64) (inference.TestResult, error)

func runTwoSample(ctx context.Context, name string, frame *dataset.Frame, choose func(diagnostics) analysis.Method, run twoSampleRunner) (*analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, b, err := twoColumns(frame)
	if err != nil {
		return nil, err
	}

	diag, err := twoSampleDiagnostics(a, b)
	if err != nil {
		return nil, err
	}
	method := choose(diag)

	res, err := run(method, a.Values, b.Values)
	if err != nil {
		return nil, err
	}

	table := twoSampleTable(
		[2]groupSummary{summarize(a), summarize(b)},
		diag,
		outcome{method: method, p: res.P},
	)
	return &analysis.Result{
		Test:     name,
		Decision: diag.decision(method),
		Table:    table,
	}, nil
}

// twoColumns reads the first two columns as numeric samples
func twoColumns(frame *dataset.Frame) (analysis.Sample, analysis.Sample, error) {
	if frame == nil || len(frame.Headers) < 2 {
		return analysis.Sample{}, analysis.Sample{}, errors.InsufficientColumns("at least two columns are required for a two-sample test")
	}
	a, err := frame.NumericColumn(0)
	if err != nil {
		return analysis.Sample{}, analysis.Sample{}, err
	}
	b, err := frame.NumericColumn(1)
	if err != nil {
		return analysis.Sample{}, analysis.Sample{}, err
	}
	if err := requireObservations([]analysis.Sample{a, b}); err != nil {
		return analysis.Sample{}, analysis.Sample{}, err
	}
	return a, b, nil
}

func sampleMean(s analysis.Sample) float64 {
	return inference.Mean(s.Values)
}
