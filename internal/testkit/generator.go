package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"hypotest/domain/analysis"
	"hypotest/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// ANOVAGeneratorConfig configures the seeded group/score generator
type ANOVAGeneratorConfig struct {
	Labels    []string  `json:"labels"`
	Means     []float64 `json:"means"`
	SD        float64   `json:"sd"`
	GroupSize int       `json:"group_size"`
	Seed      int64     `json:"seed"`
}

// DefaultANOVAConfig returns the three-group setup used by the demo data:
// means [50, 52, 65] when significant, [50, 51, 50] otherwise, and a
// within-group spread of 5 (12 for the unequal-variance demo).
func DefaultANOVAConfig(welch, significant bool) ANOVAGeneratorConfig {
	cfg := ANOVAGeneratorConfig{
		Labels:    []string{"A", "B", "C"},
		Means:     []float64{50, 51, 50},
		SD:        5,
		GroupSize: 30,
		Seed:      42,
	}
	if significant {
		cfg.Means = []float64{50, 52, 65}
	}
	if welch {
		cfg.SD = 12
	}
	return cfg
}

// ANOVAGenerator produces a long-format group/score frame
type ANOVAGenerator struct {
	config ANOVAGeneratorConfig
	rng    *rand.Rand
}

// NewANOVAGenerator creates a generator seeded from the config
func NewANOVAGenerator(config ANOVAGeneratorConfig) *ANOVAGenerator {
	return &ANOVAGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Samples draws one normal sample per configured mean
func (g *ANOVAGenerator) Samples() []analysis.Sample {
	samples := make([]analysis.Sample, len(g.config.Means))
	for i, mean := range g.config.Means {
		values := make([]float64, g.config.GroupSize)
		for j := range values {
			values[j] = mean + g.config.SD*g.rng.NormFloat64()
		}
		samples[i] = analysis.Sample{Name: g.label(i), Values: values}
	}
	return samples
}

// Frame draws the samples and lays them out under "group" and "score" columns
func (g *ANOVAGenerator) Frame() *dataset.Frame {
	return GroupScoreFrame(g.Samples()...)
}

func (g *ANOVAGenerator) label(i int) string {
	if i < len(g.config.Labels) {
		return g.config.Labels[i]
	}
	return "G" + strconv.Itoa(i+1)
}

// TwoSampleFrame draws two seeded normal columns of equal length, the shape
// expected by the independent and paired tests.
func TwoSampleFrame(seed int64, n int, meanA, meanB, sd float64) *dataset.Frame {
	rng := rand.New(rand.NewSource(seed))
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = meanA + sd*rng.NormFloat64()
		b[i] = meanB + sd*rng.NormFloat64()
	}
	return WideFrame(
		analysis.Sample{Name: "A", Values: a},
		analysis.Sample{Name: "B", Values: b},
	)
}

// NormalScores returns n expected normal order statistics (Blom positions)
// scaled to mean and sd. The values are deterministic and look normal to
// any normality test.
func NormalScores(n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		p := (float64(i+1) - 0.375) / (float64(n) + 0.25)
		out[i] = mean + sd*distuv.UnitNormal.Quantile(p)
	}
	return out
}

// ExponentialScores returns n deterministic quantiles of an exponential
// distribution with the given mean, a strongly right-skewed sample.
func ExponentialScores(n int, mean float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		p := (float64(i+1) - 0.5) / float64(n)
		out[i] = -mean * math.Log(1-p)
	}
	return out
}

// WideFrame lays samples out side by side, one column per sample. Shorter
// samples leave empty cells at the bottom.
func WideFrame(samples ...analysis.Sample) *dataset.Frame {
	headers := make([]string, len(samples))
	longest := 0
	for i, s := range samples {
		headers[i] = s.Name
		if s.Len() > longest {
			longest = s.Len()
		}
	}
	rows := make([][]string, longest)
	for r := range rows {
		rows[r] = make([]string, len(samples))
		for c, s := range samples {
			if r < s.Len() {
				rows[r][c] = formatScore(s.Values[r])
			}
		}
	}
	return dataset.NewFrame(headers, rows)
}

// GroupScoreFrame lays samples out in long format: one row per observation
// with the sample name in "group" and the value in "score".
func GroupScoreFrame(samples ...analysis.Sample) *dataset.Frame {
	var rows [][]string
	for _, s := range samples {
		for _, v := range s.Values {
			rows = append(rows, []string{s.Name, formatScore(v)})
		}
	}
	return dataset.NewFrame([]string{"group", "score"}, rows)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
