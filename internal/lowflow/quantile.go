package lowflow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// ConfidenceLevel of every reported interval.
	ConfidenceLevel = 0.95

	// skewFallback is the |γ| below which the Pearson frequency factor is the
	// normal quantile itself.
	skewFallback = 1e-6
)

// ciZ is the two-sided standard normal multiplier for ConfidenceLevel.
var ciZ = distuv.UnitNormal.Quantile(1 - (1-ConfidenceLevel)/2)

// NormalQuantile returns z with Φ(z) = p. gonum evaluates Wichura's AS241
// rational approximation, accurate to about 1e-16 over (0, 1).
func NormalQuantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	return distuv.UnitNormal.Quantile(p), nil
}

func checkProbability(p float64) error {
	if !(p > 0 && p < 1) {
		return fmt.Errorf("%w: probability %v outside (0, 1)", ErrInvalidParams, p)
	}
	return nil
}

// PearsonFrequencyFactor is Kite's cubic approximation of the Pearson type III
// frequency factor for skewness skew at standard normal quantile z:
//
//	k = (2/γ)·[(1 + γz/6 − (γ²/36)(z²−1))³ − 1]
//
// For |γ| < 1e-6 it returns z.
func PearsonFrequencyFactor(skew, z float64) float64 {
	if math.Abs(skew) < skewFallback {
		return z
	}
	base := 1 + skew*z/6 - (skew*skew/36)*(z*z-1)
	return (2 / skew) * (base*base*base - 1)
}

// normalStandardError is the standard error of a normal-family quantile with
// frequency factor k.
func normalStandardError(std float64, n int, k float64) float64 {
	return std / math.Sqrt(float64(n)) * math.Sqrt(1+k*k/2)
}

// pearsonStandardError scales the k² term by the gamma shape alpha.
func pearsonStandardError(std float64, n int, k, alpha float64) float64 {
	return std / math.Sqrt(float64(n)) * math.Sqrt(1+k*k/(2*alpha))
}
