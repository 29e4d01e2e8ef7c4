package depthfx

import (
	"fmt"
	"image"
	"math"
)

// DepthMap is a row-major grid of float32 disparity samples.
// Larger values are nearer surfaces.
type DepthMap struct {
	Width  int
	Height int
	Values []float32
}

// NewDepthMap creates a zeroed DepthMap.
func NewDepthMap(width, height int) *DepthMap {
	return &DepthMap{Width: width, Height: height, Values: make([]float32, width*height)}
}

// NewDepthMapFromValues wraps values, which must hold width*height samples.
func NewDepthMapFromValues(width, height int, values []float32) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrFormatConversion, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrFormatConversion, len(values), width*height)
	}
	return &DepthMap{Width: width, Height: height, Values: values}, nil
}

func (d *DepthMap) Bounds() image.Rectangle { return image.Rect(0, 0, d.Width, d.Height) }

func (d *DepthMap) At(x, y int) float32 { return d.Values[y*d.Width+x] }

// Clone returns a deep copy.
func (d *DepthMap) Clone() *DepthMap {
	values := make([]float32, len(d.Values))
	copy(values, d.Values)
	return &DepthMap{Width: d.Width, Height: d.Height, Values: values}
}

// Resize resamples d to width x height with bicubic interpolation. Samples
// are clamped to [0, 1], so d should already be normalized.
func (d *DepthMap) Resize(width, height int) *DepthMap {
	if width == d.Width && height == d.Height {
		return d
	}
	src := matFromValues(d.Height, d.Width, d.Values)
	defer src.Close()
	dst := NewMat()
	defer dst.Close()
	resizeCubic(src, &dst, width, height)

	out := NewDepthMap(width, height)
	copy(out.Values, dst.DataFloat32()[:width*height])
	clampSlice(out.Values, 0, 1)
	return out
}

// Mask is an immutable per-pixel selection weight in [0, 1].
// 1 means in focus / kept, 0 means rejected.
type Mask struct {
	width  int
	height int
	values []float32
}

// NewUniformMask creates a mask with every pixel set to v (clamped to [0, 1]).
func NewUniformMask(width, height int, v float64) *Mask {
	values := make([]float32, width*height)
	fv := float32(clampUnit(v))
	for i := range values {
		values[i] = fv
	}
	return &Mask{width: width, height: height, values: values}
}

// NewMaskFromValues copies values into a new mask, clamping them to [0, 1].
func NewMaskFromValues(width, height int, values []float32) (*Mask, error) {
	if width <= 0 || height <= 0 || len(values) != width*height {
		return nil, fmt.Errorf("%w: mask %dx%d with %d values", ErrMissingInput, width, height, len(values))
	}
	m := &Mask{width: width, height: height, values: make([]float32, len(values))}
	copy(m.values, values)
	clampSlice(m.values, 0, 1)
	return m, nil
}

func (m *Mask) Width() int { return m.width }
func (m *Mask) Height() int { return m.height }
func (m *Mask) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }
func (m *Mask) At(x, y int) float32 { return m.values[y*m.width+x] }

// Values returns a copy of the mask samples.
func (m *Mask) Values() []float32 {
	out := make([]float32, len(m.values))
	copy(out, m.values)
	return out
}

// Sample returns the mask value for pixel (x, y) of an image of the given
// size, interpolating bilinearly when the mask and image sizes differ.
func (m *Mask) Sample(x, y, imgW, imgH int) float32 {
	if imgW == m.width && imgH == m.height {
		return m.values[y*m.width+x]
	}
	sx := (float64(x)+0.5)*float64(m.width)/float64(imgW) - 0.5
	sy := (float64(y)+0.5)*float64(m.height)/float64(imgH) - 0.5
	return float32(bilinearSample(m.values, m.width, m.height, sy, sx))
}

// Resize resamples the mask to width x height with bicubic interpolation.
func (m *Mask) Resize(width, height int) *Mask {
	if width == m.width && height == m.height {
		return m
	}
	src := matFromValues(m.height, m.width, m.values)
	defer src.Close()
	dst := NewMat()
	defer dst.Close()
	resizeCubic(src, &dst, width, height)
	return maskFromMat(dst)
}

// --- Mat bridging ---

func matFromValues(rows, cols int, values []float32) Mat {
	mat := NewMatWithSize(rows, cols)
	copy(mat.DataFloat32(), values)
	return mat
}

// maskFromMat copies a mat into a Go-owned mask, clamping to [0, 1] since
// bicubic resampling overshoots at edges.
func maskFromMat(mat Mat) *Mask {
	rows, cols := mat.Rows(), mat.Cols()
	values := make([]float32, rows*cols)
	copy(values, mat.DataFloat32()[:rows*cols])
	clampSlice(values, 0, 1)
	return &Mask{width: cols, height: rows, values: values}
}

// ClampInPlace clamps mat values to [min, max].
func ClampInPlace(src *Mat, min, max float32) {
	n := src.Rows() * src.Cols()
	clampSlice(src.DataFloat32()[:n], min, max)
}

func clampSlice(data []float32, min, max float32) {
	for i, v := range data {
		if v < min || v != v {
			data[i] = min
		} else if v > max {
			data[i] = max
		}
	}
}

// bilinearSample samples a row-major grid using bilinear interpolation,
// clamping coordinates to the grid.
func bilinearSample(data []float32, width, height int, y, x float64) float64 {
	x = math.Max(0, math.Min(x, float64(width-1)))
	y = math.Max(0, math.Min(y, float64(height-1)))
	y0 := int(math.Floor(y))
	y1 := y0 + 1
	if y1 > height-1 {
		y1 = height - 1
	}
	x0 := int(math.Floor(x))
	x1 := x0 + 1
	if x1 > width-1 {
		x1 = width - 1
	}
	yRatio := y - float64(y0)
	xRatio := x - float64(x0)

	p00 := float64(data[y0*width+x0])
	p01 := float64(data[y0*width+x1])
	p10 := float64(data[y1*width+x0])
	p11 := float64(data[y1*width+x1])
	interpolatedX0 := p00 + xRatio*(p01-p00)
	interpolatedX1 := p10 + xRatio*(p11-p10)
	return interpolatedX0 + yRatio*(interpolatedX1-interpolatedX0)
}
