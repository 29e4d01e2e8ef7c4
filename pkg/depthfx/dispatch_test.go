package depthfx

import (
	"errors"
	"testing"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		mode     PreviewMode
		filter   FilterType
		expected Plan
	}{
		{
			name:     "Original needs nothing",
			mode:     PreviewOriginal,
			filter:   Blur,
			expected: Plan{Mode: PreviewOriginal, Filter: Blur},
		},
		{
			name:     "Depth preview",
			mode:     PreviewDepth,
			filter:   Spotlight,
			expected: Plan{Mode: PreviewDepth, Filter: Spotlight, NeedsDepth: true},
		},
		{
			name:   "Mask preview uses the filter's mask",
			mode:   PreviewMask,
			filter: GreenScreen,
			expected: Plan{Mode: PreviewMask, Filter: GreenScreen, NeedsDepth: true, NeedsMask: true,
				Mask: MaskOptions{Variant: HighPass, Sharp: true}},
		},
		{
			name:   "Filtered color pop",
			mode:   PreviewFiltered,
			filter: ColorPop,
			expected: Plan{Mode: PreviewFiltered, Filter: ColorPop, NeedsDepth: true, NeedsMask: true,
				Mask: MaskOptions{Variant: BandPass}},
		},
		{
			name:   "Filtered comic",
			mode:   PreviewFiltered,
			filter: Comic,
			expected: Plan{Mode: PreviewFiltered, Filter: Comic, NeedsDepth: true, NeedsMask: true,
				Mask: MaskOptions{Variant: HighPass}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Dispatch(tt.mode, tt.filter)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if plan != tt.expected {
				t.Errorf("Dispatch() = %+v; want %+v", plan, tt.expected)
			}
		})
	}
}

func TestDispatchCoversEveryCombination(t *testing.T) {
	modes := []PreviewMode{PreviewOriginal, PreviewDepth, PreviewMask, PreviewFiltered}
	for _, mode := range modes {
		for _, filter := range FilterTypes {
			if _, err := Dispatch(mode, filter); err != nil {
				t.Errorf("Dispatch(%s, %s) error = %v", mode, filter, err)
			}
		}
	}
}

func TestDispatchUnsupported(t *testing.T) {
	if _, err := Dispatch(PreviewMode(7), Spotlight); !errors.Is(err, ErrUnsupportedCombination) {
		t.Errorf("unknown mode: error = %v; want ErrUnsupportedCombination", err)
	}
	if _, err := Dispatch(PreviewFiltered, FilterType(-1)); !errors.Is(err, ErrUnsupportedCombination) {
		t.Errorf("unknown filter: error = %v; want ErrUnsupportedCombination", err)
	}
}

func TestMaskFor(t *testing.T) {
	bandPass := []FilterType{Spotlight, ColorPop, Blur, BlackWhite}
	for _, f := range bandPass {
		opts, err := MaskFor(f)
		if err != nil || opts != (MaskOptions{Variant: BandPass}) {
			t.Errorf("MaskFor(%s) = %+v, %v; want band-pass", f, opts, err)
		}
	}
	highPass := []FilterType{Comic, Crystallize, Edges, Rotate}
	for _, f := range highPass {
		opts, err := MaskFor(f)
		if err != nil || opts != (MaskOptions{Variant: HighPass}) {
			t.Errorf("MaskFor(%s) = %+v, %v; want high-pass", f, opts, err)
		}
	}
}

func TestParseNames(t *testing.T) {
	for _, f := range FilterTypes {
		got, err := ParseFilterType(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFilterType(%q) = %v, %v; want %v", f.String(), got, err, f)
		}
	}
	if _, err := ParseFilterType("haha"); !errors.Is(err, ErrUnsupportedCombination) {
		t.Errorf("ParseFilterType(unknown) error = %v", err)
	}
	for _, m := range []PreviewMode{PreviewOriginal, PreviewDepth, PreviewMask, PreviewFiltered} {
		got, err := ParsePreviewMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParsePreviewMode(%q) = %v, %v; want %v", m.String(), got, err, m)
		}
	}
}
