package depthfx

import (
	"image"
	"math"
)

// blendWithMask returns lerp(bg, fg, mask) per pixel: fg where the mask is
// 1, bg where it is 0. fg and bg must share bounds anchored at the origin.
func blendWithMask(fg, bg *image.NRGBA, mask *Mask) *image.NRGBA {
	b := fg.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := fg.PixOffset(x, y)
			blendPixel(out.Pix[i:i+4], fg.Pix[i:i+4], bg.Pix[i:i+4], mask.Sample(x, y, w, h))
		}
	}
	return out
}

// blendPixel interpolates two straight-alpha pixels in premultiplied space.
// Weights of exactly 0 or 1 copy the source pixel unchanged.
func blendPixel(dst, fg, bg []uint8, weight float32) {
	switch {
	case weight >= 1:
		copy(dst, fg)
		return
	case !(weight > 0):
		copy(dst, bg)
		return
	}
	m := float64(weight)
	fa := float64(fg[3]) / 255
	ba := float64(bg[3]) / 255
	a := ba + (fa-ba)*m
	if a <= 0 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	for ch := 0; ch < 3; ch++ {
		fp := float64(fg[ch]) * fa
		bp := float64(bg[ch]) * ba
		dst[ch] = toUint8((bp + (fp-bp)*m) / a)
	}
	dst[3] = toUint8(a * 255)
}

// variableBlur blurs each pixel with a radius proportional to 1-mask, so the
// in-focus region stays sharp. The radius is quantized into BlurLevels
// Gaussian layers and interpolated between neighbouring layers.
func (c *Context) variableBlur(src *image.NRGBA, mask *Mask) *image.NRGBA {
	levels := max(1, c.Filter.BlurLevels)
	sigma := c.blurSigma()
	stack := make([]*image.NRGBA, levels+1)
	stack[0] = src
	for k := 1; k < levels; k++ {
		stack[k] = c.gaussian(src, sigma*float64(k)/float64(levels))
	}
	stack[levels] = c.gaussian(src, sigma)

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(1-mask.Sample(x, y, w, h)) * float64(levels)
			lo := int(math.Floor(t))
			i := src.PixOffset(x, y)
			if lo >= levels {
				copy(out.Pix[i:i+4], stack[levels].Pix[i:i+4])
				continue
			}
			if lo < 0 {
				lo, t = 0, 0
			}
			blendPixel(out.Pix[i:i+4], stack[lo+1].Pix[i:i+4], stack[lo].Pix[i:i+4], float32(t-float64(lo)))
		}
	}
	return out
}

func toUint8(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
