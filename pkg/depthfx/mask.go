package depthfx

import "fmt"

// MaskOptions selects the response curve used by CreateMask.
type MaskOptions struct {
	Variant MaskVariant
	// Sharp swaps the default slope for MaskParams.SharpSlope, giving a
	// near-binary cut suited to background replacement.
	Sharp bool
}

// CreateMask computes a selection mask from a normalized disparity map.
//
// Two clamped linear ramps with slopes +s and -s cross zero at
// focus -/+ filterWidth/2, where filterWidth = 2/s + MaskParams.Width.
// The band-pass mask is their pixel-wise minimum, the high-pass mask the
// rising ramp alone and the low-pass mask the falling ramp alone. The result
// is resampled by scale so it lines up with the color image.
func (c *Context) CreateMask(depth *DepthMap, focus float64, scale ScaleFactor, opts MaskOptions) (*Mask, error) {
	if depth == nil || depth.Width <= 0 || depth.Height <= 0 || len(depth.Values) != depth.Width*depth.Height {
		return nil, ErrMissingDepthData
	}
	focus = clampUnit(focus)

	s := c.Mask.Slope
	if opts.Sharp {
		s = c.Mask.SharpSlope
	}
	if !(s > 0) {
		return nil, fmt.Errorf("mask slope must be positive, got %f", s)
	}
	filterWidth := c.Mask.FilterWidth(s)

	src := matFromValues(depth.Height, depth.Width, depth.Values)
	defer src.Close()

	var mask *Mask
	switch opts.Variant {
	case BandPass:
		rising := c.ramp(src, s, focus-filterWidth/2)
		defer rising.Close()
		falling := c.ramp(src, -s, focus+filterWidth/2)
		defer falling.Close()
		combined := NewMat()
		defer combined.Close()
		minMat(rising, falling, &combined)
		mask = maskFromMat(combined)
	case HighPass:
		rising := c.ramp(src, s, focus-filterWidth/2)
		defer rising.Close()
		mask = maskFromMat(rising)
	case LowPass:
		falling := c.ramp(src, -s, focus+filterWidth/2)
		defer falling.Close()
		mask = maskFromMat(falling)
	default:
		return nil, fmt.Errorf("%w: mask variant %d", ErrUnsupportedCombination, int(opts.Variant))
	}

	return Resample(mask, scale), nil
}

// CreateBandPassMask is CreateMask with the symmetric tent response.
func (c *Context) CreateBandPassMask(depth *DepthMap, focus float64, scale ScaleFactor) (*Mask, error) {
	return c.CreateMask(depth, focus, scale, MaskOptions{Variant: BandPass})
}

// CreateHighPassMask is CreateMask keeping everything nearer than focus.
func (c *Context) CreateHighPassMask(depth *DepthMap, focus float64, scale ScaleFactor, sharp bool) (*Mask, error) {
	return c.CreateMask(depth, focus, scale, MaskOptions{Variant: HighPass, Sharp: sharp})
}

// ramp computes clamp(slope*d + b, 0, 1) with b chosen so the ramp is zero
// at zeroAt.
func (c *Context) ramp(src Mat, slope, zeroAt float64) Mat {
	dst := NewMat()
	scaleAdd(src, &dst, float32(slope), float32(-slope*zeroAt))
	ClampInPlace(&dst, 0, 1)
	return dst
}
