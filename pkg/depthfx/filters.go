package depthfx

import (
	"fmt"
	"image"
)

// Context carries the tuning parameters and shared resources of the mask
// and compositing operations. It holds no per-frame state; a Context may be
// reused across frames but must not be mutated while a call is running.
type Context struct {
	Mask   MaskParams
	Filter FilterParams
	// Background is the replacement image for the green-screen recipe.
	Background image.Image
}

// NewContext creates a Context with default parameters.
func NewContext() *Context {
	return &Context{
		Mask:   NewMaskParams(),
		Filter: NewFilterParams(),
	}
}

// ApplyOptions are per-call options of Apply.
type ApplyOptions struct {
	// Orientation is attached to the output unchanged; zero means up.
	Orientation Orientation
}

// Output is a rendered frame together with its orientation tag.
type Output struct {
	Image       *image.NRGBA
	Orientation Orientation
}

// Apply runs a recipe: the color image is kept where the mask is 1 and the
// recipe's secondary image is shown where it is 0.
func (c *Context) Apply(filter FilterType, img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no color image", ErrMissingInput)
	}
	if mask == nil || mask.width == 0 || mask.height == 0 {
		return nil, fmt.Errorf("%w: no mask for %s", ErrMissingInput, filter)
	}
	orientation := opts.Orientation
	if !orientation.Valid() {
		orientation = OrientationUp
	}

	src := toNRGBA(img)
	var out *image.NRGBA
	if filter == Blur {
		out = c.variableBlur(src, mask)
	} else {
		secondary, err := c.Secondary(filter, src)
		if err != nil {
			return nil, err
		}
		out = blendWithMask(src, secondary, mask)
	}
	return &Output{Image: out, Orientation: orientation}, nil
}

// Spotlight shows the color image over transparency, gated by the mask.
func (c *Context) Spotlight(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Spotlight, img, mask, opts)
}

// ColorPop keeps the original color in focus and tints the rest.
func (c *Context) ColorPop(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(ColorPop, img, mask, opts)
}

// Blur keeps the in-focus region sharp and blurs the rest.
func (c *Context) Blur(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Blur, img, mask, opts)
}

// BlackWhite keeps the in-focus region in color and desaturates the rest.
func (c *Context) BlackWhite(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(BlackWhite, img, mask, opts)
}

// GreenScreen replaces the masked-out region with the context background.
func (c *Context) GreenScreen(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(GreenScreen, img, mask, opts)
}

// Comic keeps the in-focus region and renders the rest as an inked cartoon.
func (c *Context) Comic(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Comic, img, mask, opts)
}

// Crystallize keeps the in-focus region and pixelates the rest.
func (c *Context) Crystallize(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Crystallize, img, mask, opts)
}

// Edges keeps the in-focus region and shows an edge map elsewhere.
func (c *Context) Edges(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Edges, img, mask, opts)
}

// Rotate keeps the in-focus region over a rotated copy of the image.
func (c *Context) Rotate(img image.Image, mask *Mask, opts ApplyOptions) (*Output, error) {
	return c.Apply(Rotate, img, mask, opts)
}
