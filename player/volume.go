package player

import (
	"math"

	"github.com/sonora-player/sonora/util"
)

// VolumeCurveExponent shapes the perceptual volume curve: the pipeline's native
// volume is the linear slider value raised to this power.
const VolumeCurveExponent = 3.0

// ToVolumeCubic converts a linear 0..1 volume into the pipeline's native scale.
func ToVolumeCubic(linear float64) float64 {
	return math.Pow(util.Clamp(linear, 0, 1), VolumeCurveExponent)
}

// CubicToLinearVolume converts a native pipeline volume back to the linear 0..1 scale.
func CubicToLinearVolume(volume float64) float64 {
	return math.Pow(util.Clamp(volume, 0, 1), 1/VolumeCurveExponent)
}
