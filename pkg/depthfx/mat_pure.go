//go:build purego || js

package depthfx

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Mat is a pure Go 2D float32 matrix.
type Mat struct {
	data  []float32
	rows  int
	cols  int
	owned bool
}

func NewMat() Mat { return Mat{} }

func NewMatWithSize(rows, cols int) Mat {
	return Mat{
		data:  make([]float32, rows*cols),
		rows:  rows,
		cols:  cols,
		owned: true,
	}
}

func (m Mat) Rows() int { return m.rows }
func (m Mat) Cols() int { return m.cols }

func (m *Mat) Close() {
	if m.owned {
		m.data = nil
	}
	m.rows = 0
	m.cols = 0
}

// DataFloat32 returns the backing float32 slice.
func (m Mat) DataFloat32() []float32 {
	return m.data
}

// --- Pure Go CV operations ---

func ensureSize(dst *Mat, rows, cols int) {
	if dst.rows != rows || dst.cols != cols || dst.data == nil {
		*dst = NewMatWithSize(rows, cols)
	}
}

// scaleAdd computes dst = alpha*src + beta element-wise.
func scaleAdd(src Mat, dst *Mat, alpha, beta float32) {
	ensureSize(dst, src.rows, src.cols)
	sd, dd := src.data, dst.data
	for i := range sd {
		dd[i] = alpha*sd[i] + beta
	}
}

// minMat computes the element-wise minimum (darken blend) of a and b.
func minMat(a, b Mat, dst *Mat) {
	ensureSize(dst, a.rows, a.cols)
	ad, bd, dd := a.data, b.data, dst.data
	for i := range ad {
		if bd[i] < ad[i] {
			dd[i] = bd[i]
		} else {
			dd[i] = ad[i]
		}
	}
}

// resizeCubic resamples src to cols x rows with Catmull-Rom interpolation.
// Values are quantized to 16 bits on the way through the image package.
func resizeCubic(src Mat, dst *Mat, cols, rows int) {
	g := image.NewGray16(image.Rect(0, 0, src.cols, src.rows))
	for i, v := range src.data {
		g.Set(i%src.cols, i/src.cols, color.Gray16{Y: unitToUint16(v)})
	}
	out := image.NewGray16(image.Rect(0, 0, cols, rows))
	draw.CatmullRom.Scale(out, out.Bounds(), g, g.Bounds(), draw.Src, nil)

	ensureSize(dst, rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dst.data[y*cols+x] = float32(out.Gray16At(x, y).Y) / math.MaxUint16
		}
	}
}

func unitToUint16(v float32) uint16 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return math.MaxUint16
	default:
		return uint16(math.Round(float64(v) * math.MaxUint16))
	}
}
