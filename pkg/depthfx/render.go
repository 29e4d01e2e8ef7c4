package depthfx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DepthImage renders a disparity map as grayscale, clamping to [0, 1].
func DepthImage(d *DepthMap) *image.Gray {
	img := image.NewGray(d.Bounds())
	for i, v := range d.Values {
		img.Pix[i] = toUint8(float64(v) * 255)
	}
	return img
}

// MaskImage renders a mask as grayscale, white meaning selected.
func MaskImage(m *Mask) *image.Gray {
	img := image.NewGray(m.Bounds())
	for i, v := range m.values {
		img.Pix[i] = toUint8(float64(v) * 255)
	}
	return img
}

// Annotate returns a copy of img with lines of text printed over a dark band
// along the bottom edge.
func Annotate(img image.Image, lines ...string) *image.NRGBA {
	out := toNRGBA(img)
	if len(lines) == 0 {
		return out
	}
	face := basicfont.Face7x13
	const lineH = 16
	b := out.Bounds()
	bandTop := max(b.Min.Y, b.Max.Y-lineH*len(lines)-6)
	band := image.NewUniform(color.NRGBA{0, 0, 0, 160})
	draw.Draw(out, image.Rect(b.Min.X, bandTop, b.Max.X, b.Max.Y), band, image.Point{}, draw.Over)

	textColor := color.NRGBA{255, 255, 255, 255}
	for i, line := range lines {
		drawText(out, face, line, b.Min.X+6, bandTop+lineH*(i+1), textColor)
	}
	return out
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Apply rotates and flips img so that it displays upright for orientation o.
func (o Orientation) Apply(img image.Image) *image.NRGBA {
	var filters []gift.Filter
	switch o {
	case OrientationUpMirrored:
		filters = append(filters, gift.FlipHorizontal())
	case OrientationDown:
		filters = append(filters, gift.Rotate180())
	case OrientationDownMirrored:
		filters = append(filters, gift.FlipVertical())
	case OrientationLeftMirrored:
		filters = append(filters, gift.Transpose())
	case OrientationRight:
		filters = append(filters, gift.Rotate270())
	case OrientationRightMirrored:
		filters = append(filters, gift.Transverse())
	case OrientationLeft:
		filters = append(filters, gift.Rotate90())
	default:
		return toNRGBA(img)
	}
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// EncodeJPEG encodes img as JPEG bytes.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteImage encodes img to path, picking JPEG or PNG from the extension.
func WriteImage(path string, img image.Image) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		data, err = EncodeJPEG(img, 90)
	case ".png":
		data, err = EncodePNG(img)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// flatten composites img over black, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// DepthHistogram buckets the samples of d into n equal bins over [0, 1];
// it is used to label depth previews with the dominant disparity.
func DepthHistogram(d *DepthMap, n int) []int {
	bins := make([]int, max(1, n))
	for _, v := range d.Values {
		if !finite32(v) {
			continue
		}
		i := int(math.Floor(clampUnit(float64(v)) * float64(len(bins))))
		if i >= len(bins) {
			i = len(bins) - 1
		}
		bins[i]++
	}
	return bins
}
