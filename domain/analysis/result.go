package analysis

import "encoding/json"

// Column names of the two-sample result table
const (
	ColGroup      = "Group"
	ColSampleSize = "Sample Size"
	ColMean       = "Mean"
	ColNormalityP = "Normality p"
	ColLeveneP    = "Levene p"
	ColMethod     = "Method"
	ColPValue     = "p-value"
	ColIsDiff     = "is_diff"
)

// Column names of the ANOVA post-hoc table
const (
	ColGroupHigh      = "Group_High"
	ColGroupLow       = "Group_Low"
	ColMeanDifference = "Mean_Difference"
)

// Result is the output of one test run. Two-sample tests produce a single
// flat table; ANOVA nests a pretest table and, when the omnibus test is
// significant, a post-hoc table.
type Result struct {
	Test     string   `json:"-"`
	Decision Decision `json:"-"`
	Table    *Table   `json:"-"`
	PostHoc  *Table   `json:"-"`
	Nested   bool     `json:"-"`
}

// Post reports whether a post-hoc table was produced
func (r *Result) Post() bool {
	return r.PostHoc != nil
}

// MarshalJSON emits the flat column mapping for two-sample tests and
// {"post", "pretest", "posttest"} for ANOVA. posttest is omitted when post is false.
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.Nested {
		return json.Marshal(r.Table)
	}
	out := struct {
		Post     bool   `json:"post"`
		Pretest  *Table `json:"pretest"`
		Posttest *Table `json:"posttest,omitempty"`
	}{
		Post:     r.Post(),
		Pretest:  r.Table,
		Posttest: r.PostHoc,
	}
	return json.Marshal(out)
}
