package depthfx

import (
	"errors"
	"math"
	"testing"
)

// stripes returns a width x height map whose columns repeat cols.
func stripes(height int, cols ...float32) *DepthMap {
	d := NewDepthMap(len(cols), height)
	for y := 0; y < height; y++ {
		copy(d.Values[y*len(cols):], cols)
	}
	return d
}

func TestCreateBandPassMaskScenario(t *testing.T) {
	ctx := NewContext()
	depth := stripes(4, 0, 0.25, 0.5, 1.0)
	if _, ok := Normalize(depth); !ok {
		t.Fatal("Normalize() reported a degenerate range")
	}

	mask, err := ctx.CreateBandPassMask(depth, 0.5, 1)
	if err != nil {
		t.Fatalf("CreateBandPassMask() error = %v", err)
	}
	if mask.Width() != 4 || mask.Height() != 4 {
		t.Fatalf("mask size = %dx%d; want 4x4", mask.Width(), mask.Height())
	}

	// slope 4, filter width 0.6: ramps are 4d-0.8 and 3.2-4d.
	expected := []float32{0, 0.2, 1, 0}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := mask.At(x, y); math.Abs(float64(got-expected[x])) > 1e-5 {
				t.Errorf("mask(%d,%d) = %v; want %v", x, y, got, expected[x])
			}
		}
	}
}

func TestCreateMaskVariants(t *testing.T) {
	ctx := NewContext()
	depth := stripes(1, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0)

	tests := []struct {
		name     string
		opts     MaskOptions
		focus    float64
		expected []float32
	}{
		{
			name:     "Band-pass",
			opts:     MaskOptions{Variant: BandPass},
			focus:    0.5,
			expected: []float32{0, 0, 0, 0.4, 0.8, 1, 0.8, 0.4, 0, 0, 0},
		},
		{
			name:     "High-pass",
			opts:     MaskOptions{Variant: HighPass},
			focus:    0.5,
			expected: []float32{0, 0, 0, 0.4, 0.8, 1, 1, 1, 1, 1, 1},
		},
		{
			name:     "Low-pass",
			opts:     MaskOptions{Variant: LowPass},
			focus:    0.5,
			expected: []float32{1, 1, 1, 1, 1, 1, 0.8, 0.4, 0, 0, 0},
		},
		{
			// slope 100: filter width 0.12, zero at 0.44, one at 0.45.
			name:     "Sharp high-pass",
			opts:     MaskOptions{Variant: HighPass, Sharp: true},
			focus:    0.5,
			expected: []float32{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1},
		},
		{
			name:     "Focus above range is clamped",
			opts:     MaskOptions{Variant: BandPass},
			focus:    3,
			expected: []float32{0, 0, 0, 0, 0, 0, 0, 0, 0.4, 0.8, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, err := ctx.CreateMask(depth, tt.focus, 1, tt.opts)
			if err != nil {
				t.Fatalf("CreateMask() error = %v", err)
			}
			for x, want := range tt.expected {
				if got := mask.At(x, 0); math.Abs(float64(got-want)) > 1e-4 {
					t.Errorf("mask(%d) = %v; want %v", x, got, want)
				}
			}
		})
	}
}

func TestBandPassMaskShape(t *testing.T) {
	ctx := NewContext()
	const n = 201
	cols := make([]float32, n)
	for i := range cols {
		cols[i] = float32(i) / (n - 1)
	}
	depth := stripes(1, cols...)

	for _, focus := range []float64{0.2, 0.5, 0.8} {
		mask, err := ctx.CreateBandPassMask(depth, focus, 1)
		if err != nil {
			t.Fatalf("CreateBandPassMask() error = %v", err)
		}
		half := ctx.Mask.FilterWidth(ctx.Mask.Slope) / 2
		for x := 0; x < n; x++ {
			d := float64(cols[x])
			m := mask.At(x, 0)
			if m < 0 || m > 1 {
				t.Fatalf("focus %v: mask(%d) = %v outside [0, 1]", focus, x, m)
			}
			if math.Abs(d-focus) >= half+1e-6 && m != 0 {
				t.Errorf("focus %v: mask at d=%v is %v; want 0 outside the band", focus, d, m)
			}
			if x > 0 {
				prev := mask.At(x-1, 0)
				if d <= focus && m < prev {
					t.Errorf("focus %v: mask decreases before the focus at d=%v", focus, d)
				}
				if float64(cols[x-1]) >= focus && m > prev {
					t.Errorf("focus %v: mask increases after the focus at d=%v", focus, d)
				}
			}
		}
		peak := int(math.Round(focus * (n - 1)))
		if got := mask.At(peak, 0); math.Abs(float64(got)-1) > 1e-5 {
			t.Errorf("focus %v: mask at focus = %v; want 1", focus, got)
		}
	}
}

func TestCreateMaskScales(t *testing.T) {
	ctx := NewContext()
	depth := stripes(3, 0.5, 0.5, 0.5, 0.5)
	mask, err := ctx.CreateBandPassMask(depth, 0.5, 2)
	if err != nil {
		t.Fatalf("CreateBandPassMask() error = %v", err)
	}
	if mask.Width() != 8 || mask.Height() != 6 {
		t.Errorf("mask size = %dx%d; want 8x6", mask.Width(), mask.Height())
	}
}

func TestCreateMaskErrors(t *testing.T) {
	ctx := NewContext()
	if _, err := ctx.CreateBandPassMask(nil, 0.5, 1); !errors.Is(err, ErrMissingDepthData) {
		t.Errorf("nil depth: error = %v; want ErrMissingDepthData", err)
	}
	bad := &DepthMap{Width: 3, Height: 3, Values: make([]float32, 4)}
	if _, err := ctx.CreateBandPassMask(bad, 0.5, 1); !errors.Is(err, ErrMissingDepthData) {
		t.Errorf("short depth: error = %v; want ErrMissingDepthData", err)
	}
	if _, err := ctx.CreateMask(stripes(1, 0, 1), 0.5, 1, MaskOptions{Variant: MaskVariant(9)}); !errors.Is(err, ErrUnsupportedCombination) {
		t.Errorf("unknown variant: error = %v; want ErrUnsupportedCombination", err)
	}
}
