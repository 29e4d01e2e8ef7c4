package depthfx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
)

// ReadDepthFile decodes a depth image stored next to (or inside) a photo.
// A missing or unreadable file is reported as ErrMissingDepthData.
func ReadDepthFile(path string) (*DepthBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDepthData, err)
	}
	defer f.Close()
	return ReadDepth(f)
}

// ReadDepthBytes decodes a depth image held in memory.
func ReadDepthBytes(data []byte) (*DepthBuffer, error) {
	return ReadDepth(bytes.NewReader(data))
}

// ReadDepth decodes a depth image. 8-bit gray images become Disparity8,
// 16-bit gray images Disparity16 and color images are reduced to their
// luminance.
func ReadDepth(r io.Reader) (*DepthBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding depth image: %v", ErrMissingDepthData, err)
	}
	return DepthBufferFromImage(img)
}

// DepthBufferFromImage encodes a decoded depth image as a native buffer.
func DepthBufferFromImage(img image.Image) (*DepthBuffer, error) {
	if img == nil {
		return nil, ErrMissingDepthData
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty depth image", ErrMissingDepthData)
	}

	switch src := img.(type) {
	case *image.Gray16:
		data := make([]byte, 2*w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
				binary.LittleEndian.PutUint16(data[2*(y*w+x):], v)
			}
		}
		return &DepthBuffer{Width: w, Height: h, Format: Disparity16, Data: data}, nil
	default:
		data := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				data[y*w+x] = g.Y
			}
		}
		return &DepthBuffer{Width: w, Height: h, Format: Disparity8, Data: data}, nil
	}
}
