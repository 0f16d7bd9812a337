// Package transfer holds the pure transfer functions of the pipeline:
// the sRGB curve pair and the exposure-scaled Reinhard compression.
package transfer

import "math"

const (
	srgbLinearThreshold = 0.0031308
	srgbEncodeThreshold = 0.04045
	srgbSlope           = 12.92
	srgbScale           = 1.055
	srgbOffset          = 0.055
)

// Clamp limits value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Linearize converts a gamma-encoded sRGB sample to linear light.
// Input is clamped to [0, 1]; the function saturates, it never errors.
func Linearize(s float64) float64 {
	s = Clamp(s, 0, 1)
	if s <= srgbEncodeThreshold {
		return s / srgbSlope
	}
	return math.Pow((s+srgbOffset)/srgbScale, 2.4)
}

// Encode applies the sRGB gamma curve to a linear sample. It is the
// exact inverse of Linearize over [0, 1].
func Encode(l float64) float64 {
	l = Clamp(l, 0, 1)
	if l <= srgbLinearThreshold {
		return srgbSlope * l
	}
	return srgbScale*math.Pow(l, 1.0/2.4) - srgbOffset
}

// Compress scales a linear sample by the exposure multiplier and maps
// it through the Reinhard curve x/(1+x). Monotonic, and every
// non-negative input lands in [0, 1). Callers skip this stage entirely
// when exposure is the neutral 1.0.
func Compress(l, exposure float64) float64 {
	l *= exposure
	return l / (1.0 + l)
}
