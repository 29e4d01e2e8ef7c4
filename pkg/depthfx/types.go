package depthfx

import (
	"fmt"
	"image/color"
	"math"
	"time"
)

// PixelFormat identifies the native encoding of a depth buffer.
type PixelFormat int

const (
	// DisparityFloat32 is the canonical encoding used downstream.
	DisparityFloat32 PixelFormat = iota
	DisparityFloat16
	DepthFloat32
	DepthFloat16
	Disparity8
	Disparity16
	// Depth16mm is a Z16 buffer holding millimetres, 0 meaning no data.
	Depth16mm
)

func (f PixelFormat) String() string {
	switch f {
	case DisparityFloat32:
		return "DisparityFloat32"
	case DisparityFloat16:
		return "DisparityFloat16"
	case DepthFloat32:
		return "DepthFloat32"
	case DepthFloat16:
		return "DepthFloat16"
	case Disparity8:
		return "Disparity8"
	case Disparity16:
		return "Disparity16"
	case Depth16mm:
		return "Depth16mm"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the sample size of the format, or 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case DisparityFloat32, DepthFloat32:
		return 4
	case DisparityFloat16, DepthFloat16, Disparity16, Depth16mm:
		return 2
	case Disparity8:
		return 1
	default:
		return 0
	}
}

// PreviewMode selects what the display path shows.
type PreviewMode int

const (
	PreviewOriginal PreviewMode = iota
	PreviewDepth
	PreviewMask
	PreviewFiltered
)

func (m PreviewMode) String() string {
	switch m {
	case PreviewOriginal:
		return "original"
	case PreviewDepth:
		return "depth"
	case PreviewMask:
		return "mask"
	case PreviewFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// FilterType is the closed set of compositing recipes.
type FilterType int

const (
	Spotlight FilterType = iota
	ColorPop
	Blur
	BlackWhite
	GreenScreen
	Comic
	Crystallize
	Edges
	Rotate
)

var filterNames = map[FilterType]string{
	Spotlight:   "spotlight",
	ColorPop:    "color",
	Blur:        "blur",
	BlackWhite:  "bw",
	GreenScreen: "greenscreen",
	Comic:       "comic",
	Crystallize: "crystallize",
	Edges:       "edges",
	Rotate:      "rotate",
}

// FilterTypes lists every recipe in declaration order.
var FilterTypes = []FilterType{Spotlight, ColorPop, Blur, BlackWhite, GreenScreen, Comic, Crystallize, Edges, Rotate}

func (t FilterType) String() string {
	if name, ok := filterNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseFilterType maps a recipe name back to its FilterType.
func ParseFilterType(name string) (FilterType, error) {
	for t, n := range filterNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: filter %q", ErrUnsupportedCombination, name)
}

// ParsePreviewMode maps a mode name back to its PreviewMode.
func ParsePreviewMode(name string) (PreviewMode, error) {
	for _, m := range []PreviewMode{PreviewOriginal, PreviewDepth, PreviewMask, PreviewFiltered} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: preview mode %q", ErrUnsupportedCombination, name)
}

// MaskVariant selects the shape of the depth response curve.
type MaskVariant int

const (
	// BandPass is a tent centred on the focus value.
	BandPass MaskVariant = iota
	// HighPass keeps everything nearer than the focus threshold.
	HighPass
	// LowPass keeps everything farther than the focus threshold.
	LowPass
)

func (v MaskVariant) String() string {
	switch v {
	case BandPass:
		return "band-pass"
	case HighPass:
		return "high-pass"
	case LowPass:
		return "low-pass"
	default:
		return "unknown"
	}
}

// Orientation is an EXIF orientation tag (1..8).
type Orientation int

const (
	OrientationUp            Orientation = 1
	OrientationUpMirrored    Orientation = 2
	OrientationDown          Orientation = 3
	OrientationDownMirrored  Orientation = 4
	OrientationLeftMirrored  Orientation = 5
	OrientationRight         Orientation = 6
	OrientationRightMirrored Orientation = 7
	OrientationLeft          Orientation = 8
)

// Valid reports whether o is one of the eight EXIF orientations.
func (o Orientation) Valid() bool { return o >= OrientationUp && o <= OrientationLeft }

// Ranged represents a value range.
type Ranged struct {
	Start float64
	End   float64
}

// Span returns End - Start.
func (r Ranged) Span() float64 { return r.End - r.Start }

// ScaleFactor is the linear ratio between color and depth resolution.
type ScaleFactor float64

// MaskParams holds the tuning constants of the mask ramps.
type MaskParams struct {
	Slope      float64
	SharpSlope float64
	Width      float64
}

// NewMaskParams creates a MaskParams with default values.
func NewMaskParams() MaskParams {
	return MaskParams{
		Slope:      4.0,
		SharpSlope: 100.0,
		Width:      0.1,
	}
}

// FilterWidth is the support of the band-pass tent for the given slope.
func (p MaskParams) FilterWidth(slope float64) float64 {
	return 2/slope + p.Width
}

// FilterParams holds the cosmetic constants of the compositing recipes.
type FilterParams struct {
	BlurRadius          float64
	BlurLevels          int
	MonochromeColor     color.NRGBA
	MonochromeIntensity float64
	PosterizeLevels     int
	ComicEdgeStrength   float64
	CrystalSize         int
	RotateDegrees       float64
}

// NewFilterParams creates a FilterParams with default values.
func NewFilterParams() FilterParams {
	return FilterParams{
		BlurRadius:          15.0,
		BlurLevels:          4,
		MonochromeColor:     color.NRGBA{R: 255, G: 0, B: 0, A: 255},
		MonochromeIntensity: 0.8,
		PosterizeLevels:     6,
		ComicEdgeStrength:   1.5,
		CrystalSize:         20,
		RotateDegrees:       180,
	}
}

// SyncParams configures color/depth frame pairing.
type SyncParams struct {
	Tolerance time.Duration
}

// NewSyncParams creates a SyncParams with default values.
func NewSyncParams() SyncParams {
	return SyncParams{Tolerance: 20 * time.Millisecond}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
