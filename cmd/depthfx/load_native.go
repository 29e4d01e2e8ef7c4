//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	fx "depthfx/pkg/depthfx"
)

// loadDepth reads a depth image with OpenCV, which keeps 16-bit and float
// samples that the image package would reduce.
func loadDepth(path string) (*fx.DepthBuffer, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, fmt.Errorf("%w: could not load %s", fx.ErrMissingDepthData, path)
	}
	defer src.Close()

	gray := src
	switch src.Channels() {
	case 1:
	case 3, 4:
		gray = gocv.NewMat()
		defer gray.Close()
		code := gocv.ColorBGRToGray
		if src.Channels() == 4 {
			code = gocv.ColorBGRAToGray
		}
		gocv.CvtColor(src, &gray, code)
	default:
		return nil, fmt.Errorf("%w: %d channel depth image", fx.ErrFormatConversion, src.Channels())
	}

	var format fx.PixelFormat
	switch gray.Type() {
	case gocv.MatTypeCV8UC1:
		format = fx.Disparity8
	case gocv.MatTypeCV16UC1:
		format = fx.Disparity16
	case gocv.MatTypeCV32FC1:
		format = fx.DisparityFloat32
	default:
		return nil, fmt.Errorf("%w: unsupported mat type %v", fx.ErrFormatConversion, gray.Type())
	}

	return &fx.DepthBuffer{
		Width:  gray.Cols(),
		Height: gray.Rows(),
		Format: format,
		Data:   gray.ToBytes(),
	}, nil
}
