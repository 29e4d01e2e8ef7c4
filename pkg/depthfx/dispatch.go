package depthfx

import "fmt"

// Plan is the work a frame needs for a given preview mode and filter.
type Plan struct {
	Mode   PreviewMode
	Filter FilterType
	// NeedsDepth is false only for the original preview.
	NeedsDepth bool
	// NeedsMask is true for the mask and filtered previews.
	NeedsMask bool
	Mask      MaskOptions
}

var filterMasks = map[FilterType]MaskOptions{
	Spotlight:   {Variant: BandPass},
	ColorPop:    {Variant: BandPass},
	Blur:        {Variant: BandPass},
	BlackWhite:  {Variant: BandPass},
	GreenScreen: {Variant: HighPass, Sharp: true},
	Comic:       {Variant: HighPass},
	Crystallize: {Variant: HighPass},
	Edges:       {Variant: HighPass},
	Rotate:      {Variant: HighPass},
}

// MaskFor returns the mask shape a filter is designed for.
func MaskFor(filter FilterType) (MaskOptions, error) {
	opts, ok := filterMasks[filter]
	if !ok {
		return MaskOptions{}, fmt.Errorf("%w: filter %d", ErrUnsupportedCombination, int(filter))
	}
	return opts, nil
}

// Dispatch maps a preview mode and filter selection to a Plan. Every
// combination outside the known enums is reported as
// ErrUnsupportedCombination rather than silently falling back.
func Dispatch(mode PreviewMode, filter FilterType) (Plan, error) {
	maskOpts, err := MaskFor(filter)
	if err != nil {
		return Plan{}, err
	}
	switch mode {
	case PreviewOriginal:
		return Plan{Mode: mode, Filter: filter}, nil
	case PreviewDepth:
		return Plan{Mode: mode, Filter: filter, NeedsDepth: true}, nil
	case PreviewMask, PreviewFiltered:
		return Plan{Mode: mode, Filter: filter, NeedsDepth: true, NeedsMask: true, Mask: maskOpts}, nil
	default:
		return Plan{}, fmt.Errorf("%w: preview mode %d", ErrUnsupportedCombination, int(mode))
	}
}
