package depthfx

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Secondary returns the processed image a recipe blends against the
// original where the mask is 0.
func (c *Context) Secondary(filter FilterType, img image.Image) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no color image", ErrMissingInput)
	}
	src := toNRGBA(img)

	switch filter {
	case Spotlight:
		return image.NewNRGBA(src.Bounds()), nil
	case ColorPop:
		return c.monochrome(src), nil
	case Blur:
		return c.gaussian(src, c.blurSigma()), nil
	case BlackWhite:
		return c.run(src, gift.Grayscale()), nil
	case GreenScreen:
		return c.fitBackground(src.Bounds())
	case Comic:
		return c.comic(src), nil
	case Crystallize:
		return c.run(src, gift.Pixelate(max(1, c.Filter.CrystalSize))), nil
	case Edges:
		return c.run(src, gift.Sobel()), nil
	case Rotate:
		b := src.Bounds()
		return c.run(src,
			gift.Rotate(float32(c.Filter.RotateDegrees), color.Transparent, gift.CubicInterpolation),
			gift.CropToSize(b.Dx(), b.Dy(), gift.CenterAnchor),
		), nil
	default:
		return nil, fmt.Errorf("%w: filter %d", ErrUnsupportedCombination, int(filter))
	}
}

func (c *Context) run(src image.Image, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

func (c *Context) gaussian(src *image.NRGBA, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return toNRGBA(src)
	}
	return c.run(src, gift.GaussianBlur(float32(sigma)))
}

// blurSigma converts the blur radius into a Gaussian sigma whose kernel
// spans roughly that radius.
func (c *Context) blurSigma() float64 {
	return c.Filter.BlurRadius / 3
}

// monochrome tints the luminance of every pixel with MonochromeColor and
// mixes the result with the original by MonochromeIntensity.
func (c *Context) monochrome(src *image.NRGBA) *image.NRGBA {
	tint := c.Filter.MonochromeColor
	tr := float32(tint.R) / 255
	tg := float32(tint.G) / 255
	tb := float32(tint.B) / 255
	k := float32(clampUnit(c.Filter.MonochromeIntensity))
	return c.run(src, gift.ColorFunc(func(r0, g0, b0, a0 float32) (float32, float32, float32, float32) {
		lum := 0.2126*r0 + 0.7152*g0 + 0.0722*b0
		r := r0 + (lum*tr-r0)*k
		g := g0 + (lum*tg-g0)*k
		b := b0 + (lum*tb-b0)*k
		return r, g, b, a0
	}))
}

// comic posterizes the image and darkens it along Sobel edges.
func (c *Context) comic(src *image.NRGBA) *image.NRGBA {
	levels := float32(max(2, c.Filter.PosterizeLevels) - 1)
	poster := c.run(src, gift.ColorFunc(func(r0, g0, b0, a0 float32) (float32, float32, float32, float32) {
		q := func(v float32) float32 { return float32(math.Round(float64(v*levels))) / levels }
		return q(r0), q(g0), q(b0), a0
	}))
	edges := c.run(src, gift.Grayscale(), gift.Sobel())

	strength := c.Filter.ComicEdgeStrength
	b := poster.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			e := float64(edges.NRGBAAt(x, y).R) / 255
			ink := 1 - clampUnit(e*strength)
			i := poster.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				poster.Pix[i+ch] = uint8(math.Round(float64(poster.Pix[i+ch]) * ink))
			}
		}
	}
	return poster
}

// fitBackground scales the context background to cover bounds and crops it
// from the top-left corner.
func (c *Context) fitBackground(bounds image.Rectangle) (*image.NRGBA, error) {
	if c.Background == nil || c.Background.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no background image", ErrMissingInput)
	}
	bg := c.Background
	bb := bg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if bb.Dx() < w || bb.Dy() < h {
		scale := math.Max(float64(w)/float64(bb.Dx()), float64(h)/float64(bb.Dy()))
		bg = resize.Resize(
			uint(math.Ceil(float64(bb.Dx())*scale)),
			uint(math.Ceil(float64(bb.Dy())*scale)),
			bg, resize.Bicubic)
		bb = bg.Bounds()
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), bg, bb.Min, draw.Src)
	return out, nil
}

// toNRGBA copies img into a new NRGBA image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
