package depthfx

import "math"

// Normalize stretches d in place so its minimum maps to 0 and its maximum
// to 1, and returns the original range.
//
// Non-finite samples are ignored when finding the range and written as 0.
// When the range is zero, or no finite sample exists, every sample is set
// to 0 and ok is false.
func Normalize(d *DepthMap) (r Ranged, ok bool) {
	minPixel := float32(math.Inf(1))
	maxPixel := float32(math.Inf(-1))
	for _, v := range d.Values {
		if !finite32(v) {
			continue
		}
		if v < minPixel {
			minPixel = v
		}
		if v > maxPixel {
			maxPixel = v
		}
	}

	// float64 keeps the span finite for ranges wider than MaxFloat32.
	lo := float64(minPixel)
	span := float64(maxPixel) - lo
	if !(span > 0) || math.IsInf(span, 0) {
		for i := range d.Values {
			d.Values[i] = 0
		}
		if finite32(minPixel) {
			r = Ranged{Start: float64(minPixel), End: float64(maxPixel)}
		}
		return r, false
	}

	for i, v := range d.Values {
		if !finite32(v) {
			d.Values[i] = 0
			continue
		}
		d.Values[i] = float32((float64(v) - lo) / span)
	}
	return Ranged{Start: float64(minPixel), End: float64(maxPixel)}, true
}

// Clamp limits every sample of d to [0, 1]; NaN samples become 0.
func Clamp(d *DepthMap) {
	clampSlice(d.Values, 0, 1)
}

func finite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
