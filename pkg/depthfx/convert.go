package depthfx

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/x448/float16"
)

// DepthBuffer is a depth or disparity map in its native encoding, as handed
// over by a capture device or decoded from an asset. Samples are little
// endian.
type DepthBuffer struct {
	Width       int
	Height      int
	Format      PixelFormat
	BytesPerRow int // 0 means tightly packed
	Data        []byte
}

// Size returns the buffer dimensions.
func (b *DepthBuffer) Size() image.Point { return image.Pt(b.Width, b.Height) }

func (b *DepthBuffer) stride() int {
	if b.BytesPerRow > 0 {
		return b.BytesPerRow
	}
	return b.Width * b.Format.BytesPerPixel()
}

func (b *DepthBuffer) validate() error {
	bpp := b.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: unknown pixel format %d", ErrFormatConversion, int(b.Format))
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrFormatConversion, b.Width, b.Height)
	}
	stride := b.stride()
	if stride < b.Width*bpp {
		return fmt.Errorf("%w: row stride %d shorter than %d bytes", ErrFormatConversion, stride, b.Width*bpp)
	}
	if need := stride*(b.Height-1) + b.Width*bpp; len(b.Data) < need {
		return fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrFormatConversion, len(b.Data), need)
	}
	return nil
}

// ToDisparity converts buf into the canonical float32 disparity map.
// Larger output values always mean nearer surfaces; depth samples that are
// zero, negative or non-finite carry no data and become 0.
func ToDisparity(buf *DepthBuffer) (*DepthMap, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, ErrMissingDepthData
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}

	decode := sampleDecoder(buf.Format)
	bpp := buf.Format.BytesPerPixel()
	stride := buf.stride()
	out := NewDepthMap(buf.Width, buf.Height)
	for y := 0; y < buf.Height; y++ {
		row := buf.Data[y*stride : y*stride+buf.Width*bpp]
		dst := out.Values[y*buf.Width : (y+1)*buf.Width]
		for x := range dst {
			dst[x] = decode(row[x*bpp : (x+1)*bpp])
		}
	}
	return out, nil
}

func sampleDecoder(f PixelFormat) func([]byte) float32 {
	switch f {
	case DisparityFloat16:
		return func(b []byte) float32 {
			return float16.Frombits(binary.LittleEndian.Uint16(b)).Float32()
		}
	case DepthFloat32:
		return func(b []byte) float32 {
			return depthToDisparity(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
	case DepthFloat16:
		return func(b []byte) float32 {
			return depthToDisparity(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())
		}
	case Disparity8:
		return func(b []byte) float32 {
			return float32(b[0]) / math.MaxUint8
		}
	case Disparity16:
		return func(b []byte) float32 {
			return float32(binary.LittleEndian.Uint16(b)) / math.MaxUint16
		}
	case Depth16mm:
		return func(b []byte) float32 {
			return depthToDisparity(float32(binary.LittleEndian.Uint16(b)) / 1000)
		}
	default:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	}
}

func depthToDisparity(depth float32) float32 {
	if !(depth > 0) || !finite32(depth) {
		return 0
	}
	return 1 / depth
}

// NewDisparityBuffer encodes a float32 disparity map as a canonical buffer.
func NewDisparityBuffer(d *DepthMap) *DepthBuffer {
	data := make([]byte, 4*len(d.Values))
	for i, v := range d.Values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return &DepthBuffer{Width: d.Width, Height: d.Height, Format: DisparityFloat32, Data: data}
}

// NewScaleFactor returns max(color dimension) / max(depth dimension).
func NewScaleFactor(colorSize, depthSize image.Point) ScaleFactor {
	depthMax := max(depthSize.X, depthSize.Y)
	if depthMax <= 0 {
		return 1
	}
	return ScaleFactor(float64(max(colorSize.X, colorSize.Y)) / float64(depthMax))
}

// Apply returns the size of a depth-derived image after scaling by s.
func (s ScaleFactor) Apply(size image.Point) image.Point {
	return image.Pt(
		max(1, int(math.Round(float64(size.X)*float64(s)))),
		max(1, int(math.Round(float64(size.Y)*float64(s)))),
	)
}

// Resample scales a mask by s with bicubic interpolation. A factor of 1,
// or a non-positive one, returns m unchanged.
func Resample(m *Mask, s ScaleFactor) *Mask {
	if m == nil || s <= 0 || s == 1 {
		return m
	}
	size := s.Apply(image.Pt(m.width, m.height))
	return m.Resize(size.X, size.Y)
}
