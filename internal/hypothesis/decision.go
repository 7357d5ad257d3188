package hypothesis

import (
	"fmt"

	"hypotest/adapters/stats/inference"
	"hypotest/domain/analysis"
	"hypotest/internal/errors"
)

// diagnostics are the assumption checks run before a test is chosen
type diagnostics struct {
	normalityP []float64
	leveneP    float64
}

func (d diagnostics) normalityPassed() []bool {
	passed := make([]bool, len(d.normalityP))
	for i, p := range d.normalityP {
		passed[i] = !fails(p)
	}
	return passed
}

func (d diagnostics) anyNonNormal() bool {
	for _, p := range d.normalityP {
		if fails(p) {
			return true
		}
	}
	return false
}

func (d diagnostics) decision(method analysis.Method) analysis.Decision {
	return analysis.Decision{
		NormalityPassed:     d.normalityPassed(),
		VarianceHomogeneous: !fails(d.leveneP),
		NormalityP:          d.normalityP,
		LeveneP:             d.leveneP,
		Method:              method,
	}
}

// fails reports a diagnostic rejection. An undefined (NaN) p-value never fails.
func fails(p float64) bool {
	return p < analysis.SignificanceLevel
}

// requireObservations rejects samples left empty after missing values were dropped
func requireObservations(samples []analysis.Sample) error {
	for _, s := range samples {
		if s.Len() == 0 {
			return errors.DataInsufficient(fmt.Sprintf("group %q has no usable observations", s.Name))
		}
	}
	return nil
}

// normality runs Shapiro-Wilk on every sample. Library errors are returned as-is.
func normality(samples []analysis.Sample) ([]float64, error) {
	ps := make([]float64, len(samples))
	for i, s := range samples {
		res, err := inference.ShapiroWilk(s.Values)
		if err != nil {
			return nil, err
		}
		ps[i] = res.P
	}
	return ps, nil
}

// twoSampleDiagnostics runs Shapiro-Wilk on both samples and a mean-centered Levene test
func twoSampleDiagnostics(a, b analysis.Sample) (diagnostics, error) {
	ps, err := normality([]analysis.Sample{a, b})
	if err != nil {
		return diagnostics{}, err
	}
	lev, err := inference.Levene(a.Values, b.Values)
	if err != nil {
		return diagnostics{}, err
	}
	return diagnostics{normalityP: ps, leveneP: lev.P}, nil
}

// chooseIndependent picks the independent two-sample method. Any failed
// diagnostic selects the rank-sum test; otherwise Levene decides between the
// pooled and the Welch form of the t-test.
func chooseIndependent(d diagnostics) analysis.Method {
	if d.anyNonNormal() || fails(d.leveneP) {
		return analysis.MethodMannWhitneyU
	}
	if d.leveneP >= analysis.SignificanceLevel {
		return analysis.MethodStudentT
	}
	return analysis.MethodWelchT
}

// choosePaired picks the paired method. Levene takes part in the gate even
// though the samples are paired.
// TODO: confirm with the stats owners whether Levene should gate the paired test at all.
func choosePaired(d diagnostics) analysis.Method {
	if d.anyNonNormal() || fails(d.leveneP) {
		return analysis.MethodWilcoxonSignedRank
	}
	return analysis.MethodPairedT
}

// chooseOmnibus picks the ANOVA form: Welch when any group looks non-normal
func chooseOmnibus(d diagnostics) analysis.Method {
	if d.anyNonNormal() {
		return analysis.MethodWelchANOVA
	}
	return analysis.MethodOneWayANOVA
}
