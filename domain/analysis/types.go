package analysis

import (
	"encoding/json"
	"math"
)

// SignificanceLevel is the alpha used for every diagnostic and every test.
const SignificanceLevel = 0.05

// BelowThresholdLabel replaces p-values under SignificanceLevel in reported output.
const BelowThresholdLabel = "< 0.05"

// Sample is the ordered observations of one named group with missing values dropped.
type Sample struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Len returns the number of usable observations
func (s Sample) Len() int {
	return len(s.Values)
}

// Method identifies which statistical procedure produced a p-value.
type Method int

const (
	MethodUnknown Method = iota
	MethodMannWhitneyU
	MethodStudentT
	MethodWelchT
	MethodWilcoxonSignedRank
	MethodPairedT
	MethodOneWayANOVA
	MethodWelchANOVA
	MethodTukeyHSD
	MethodGamesHowell
)

// Display strings are part of the output contract (spreadsheets and JSON).
var methodNames = [...]string{
	MethodUnknown:            "",
	MethodMannWhitneyU:       "Mann_Whitney U",
	MethodStudentT:           "t-test (Equal Var)",
	MethodWelchT:             "t-test (Unequal Var)",
	MethodWilcoxonSignedRank: "Wilcoxon Signed-Rank",
	MethodPairedT:            "Paired t-test",
	MethodOneWayANOVA:        "One-way ANOVA",
	MethodWelchANOVA:         "Welch ANOVA",
	MethodTukeyHSD:           "Tukey_HSD",
	MethodGamesHowell:        "Welch_GamesHowell",
}

// String returns the canonical display name
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return ""
	}
	return methodNames[m]
}

// Parametric reports whether the method assumes normally distributed data
func (m Method) Parametric() bool {
	switch m {
	case MethodStudentT, MethodWelchT, MethodPairedT, MethodOneWayANOVA, MethodWelchANOVA, MethodTukeyHSD, MethodGamesHowell:
		return true
	}
	return false
}

// PostHoc returns the pairwise procedure paired with an omnibus method.
func (m Method) PostHoc() Method {
	switch m {
	case MethodWelchANOVA:
		return MethodGamesHowell
	case MethodOneWayANOVA:
		return MethodTukeyHSD
	}
	return MethodUnknown
}

// MarshalJSON encodes the display name
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Decision is the derived record of which branch a test took.
type Decision struct {
	NormalityPassed     []bool    `json:"normality_passed"`
	VarianceHomogeneous bool      `json:"variance_homogeneous"`
	NormalityP          []float64 `json:"-"`
	LeveneP             float64   `json:"-"`
	Method              Method    `json:"method"`
}

// PValue is a raw p-value with the reporting rules attached.
type PValue float64

// Significant reports p < SignificanceLevel
func (p PValue) Significant() bool {
	return float64(p) < SignificanceLevel
}

// Display returns the reported value: the string BelowThresholdLabel when
// significant, otherwise the p-value rounded to 2 decimals as a float64.
// NaN displays as nil.
func (p PValue) Display() interface{} {
	if math.IsNaN(float64(p)) {
		return nil
	}
	if p.Significant() {
		return BelowThresholdLabel
	}
	return Round2(float64(p))
}

// MarshalJSON keeps the number/string distinction of Display
func (p PValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Display())
}

// Round2 rounds to 2 decimal places. NaN passes through unchanged.
func Round2(val float64) float64 {
	return math.Round(val*100) / 100
}

// RoundOrNil rounds to 2 decimals, mapping NaN to nil so that it is emitted
// as an empty cell.
func RoundOrNil(val float64) interface{} {
	if math.IsNaN(val) {
		return nil
	}
	return Round2(val)
}
