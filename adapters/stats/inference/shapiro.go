package inference

import (
	"fmt"
	"math"
	"sort"
)

// ShapiroResult holds the W statistic and its p-value
type ShapiroResult struct {
	W float64
	P float64
}

// Royston (1995) polynomial coefficients, algorithm AS R94.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swG  = []float64{-2.273, 0.459}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

const (
	shapiroMinN = 3
	shapiroMaxN = 5000
)

// ShapiroWilk tests the null hypothesis that data was drawn from a normal
// distribution. A sample with zero range reports W = 1, p = 1.
func ShapiroWilk(data []float64) (ShapiroResult, error) {
	n := len(data)
	if n == 0 {
		return ShapiroResult{}, ErrEmptySample
	}
	if n < shapiroMinN {
		return ShapiroResult{}, fmt.Errorf("shapiro-wilk needs at least %d observations, got %d: %w", shapiroMinN, n, ErrSampleSize)
	}
	if n > shapiroMaxN {
		return ShapiroResult{}, fmt.Errorf("shapiro-wilk supports at most %d observations, got %d: %w", shapiroMaxN, n, ErrSampleSize)
	}

	x := append([]float64(nil), data...)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return ShapiroResult{W: 1, P: 1}, nil
	}

	a := shapiroCoefficients(n)

	mean := Mean(x)
	var num, ss float64
	for i := range x {
		num += a[i] * x[i]
		d := x[i] - mean
		ss += d * d
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}

	return ShapiroResult{W: w, P: shapiroPValue(w, n)}, nil
}

// shapiroCoefficients returns the weights a_1..a_n (antisymmetric, a_n > 0).
func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, n)
	var summ2 float64
	for i := 0; i < n; i++ {
		m[i] = NormalQuantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) + m[n-1]/ssumm2
	if n <= 5 {
		phi := (summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*a1*a1)
		fac := math.Sqrt(phi)
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / fac
		}
		a[0], a[n-1] = -a1, a1
		return a
	}

	a2 := poly(swC2, rsn) + m[n-2]/ssumm2
	phi := (summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*a1*a1 - 2*a2*a2)
	fac := math.Sqrt(phi)
	for i := 2; i < n-2; i++ {
		a[i] = m[i] / fac
	}
	a[0], a[1] = -a1, -a2
	a[n-2], a[n-1] = a2, a1
	return a
}

// shapiroPValue applies Royston's normalizing transformation of W.
func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		const stqr = math.Pi / 3 // asin(sqrt(3/4))
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - stqr)
		return clampProbability(p)
	}

	an := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		mu = poly(swC5, xx)
		sigma = math.Exp(poly(swC6, xx))
	}
	return clampProbability(1 - NormalCDF((y-mu)/sigma))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
