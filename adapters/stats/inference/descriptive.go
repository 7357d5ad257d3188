package inference

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
)

// Library errors. Callers see these unchanged.
var (
	ErrEmptySample      = errors.New("inference: sample is empty")
	ErrSampleSize       = errors.New("inference: sample too small")
	ErrMismatchedLength = errors.New("inference: paired samples differ in length")
	ErrZeroDifferences  = errors.New("inference: all paired differences are zero")
	ErrTooFewGroups     = errors.New("inference: at least two groups are required")
)

// Summary holds the descriptive statistics of one sample
type Summary struct {
	N        int
	Mean     float64
	Median   float64
	Variance float64 // sample variance, n-1 denominator
}

// Describe computes mean, median and sample variance. Variance is NaN for n < 2.
func Describe(data []float64) (Summary, error) {
	if len(data) == 0 {
		return Summary{}, ErrEmptySample
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	variance := math.NaN()
	if len(data) > 1 {
		variance, err = stats.SampleVariance(data)
		if err != nil {
			return Summary{}, err
		}
	}
	return Summary{N: len(data), Mean: mean, Median: median, Variance: variance}, nil
}

// Mean returns the arithmetic mean, NaN for an empty slice
func Mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return m
}
