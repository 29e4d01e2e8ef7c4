package depthfx

import "errors"

var (
	// ErrMissingDepthData means the frame or asset carries no depth.
	ErrMissingDepthData = errors.New("no depth data available")
	// ErrFormatConversion means the native depth encoding could not be read.
	ErrFormatConversion = errors.New("depth format conversion failed")
	// ErrMissingInput means a recipe was invoked without its image, mask or background.
	ErrMissingInput = errors.New("missing mask or secondary image")
	// ErrUnsupportedCombination means no plan exists for a mode/filter pair.
	ErrUnsupportedCombination = errors.New("unsupported mode/filter combination")
)
