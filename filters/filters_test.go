package filters

import (
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imagekit/images"
)

func uniform(t *testing.T, w, h int, c color.NRGBA) *images.RasterImage {
	t.Helper()
	img, err := images.NewFilledRaster(w, h, c)
	require.NoError(t, err)
	return img
}

func gray(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

func TestSettingsNormalize(t *testing.T) {
	s := Settings{
		Brightness: 250,
		Contrast:   -300,
		Blur:       50,
		Grayscale:  -1,
		HueRotate:  -90,
		Opacity:    120,
		Noise:      math.NaN(),
		Tint:       -101,
	}.Normalize()

	assert.Equal(t, 100.0, s.Brightness)
	assert.Equal(t, -100.0, s.Contrast)
	assert.Equal(t, 20.0, s.Blur)
	assert.Equal(t, 0.0, s.Grayscale)
	assert.Equal(t, 270.0, s.HueRotate)
	assert.Equal(t, 100.0, s.Opacity)
	assert.Equal(t, 0.0, s.Noise)
	assert.Equal(t, -100.0, s.Tint)

	assert.Equal(t, 0.0, Settings{HueRotate: 720}.Normalize().HueRotate)
}

func TestIsNeutral(t *testing.T) {
	assert.True(t, Settings{}.IsNeutral())
	assert.True(t, Settings{Opacity: 100}.IsNeutral())
	assert.True(t, Settings{HueRotate: 360}.IsNeutral())
	assert.False(t, Settings{Opacity: 50}.IsNeutral())
	assert.False(t, Settings{Tint: 1}.IsNeutral())
}

func TestStagesOrder(t *testing.T) {
	got := Stages(Settings{Noise: 1, Brightness: 5, Blur: 2, Sharpen: 10, Vignette: 3, Temperature: -4})
	assert.Equal(t, []string{StageScalar, StageBlur, StageTemperature, StageSharpen, StageVignette, StageNoise}, got)
	assert.Empty(t, Stages(Settings{}))
}

func TestApplyNeutral(t *testing.T) {
	src := uniform(t, 8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	want := src.Clone()

	out, err := Apply(src, Settings{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, want.Pix, out.Pix)
}

func TestApplyScalarFilters(t *testing.T) {
	tests := []struct {
		name  string
		in    color.NRGBA
		s     Settings
		check func(t *testing.T, c color.NRGBA)
	}{
		{
			name: "brightness is multiplicative",
			in:   gray(100),
			s:    Settings{Brightness: 50},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 150, int(c.R), 1)
			},
		},
		{
			name: "negative brightness darkens",
			in:   gray(200),
			s:    Settings{Brightness: -50},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 100, int(c.R), 1)
			},
		},
		{
			name: "contrast pushes away from mid-gray",
			in:   gray(200),
			s:    Settings{Contrast: 100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Equal(t, uint8(255), c.R)
			},
		},
		{
			name: "full saturation cut removes color",
			in:   color.NRGBA{R: 200, G: 50, B: 50, A: 255},
			s:    Settings{Saturation: -100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, int(c.R), int(c.G), 1)
				assert.InDelta(t, int(c.G), int(c.B), 1)
			},
		},
		{
			name: "hue rotation moves red towards green",
			in:   color.NRGBA{R: 255, A: 255},
			s:    Settings{HueRotate: 120},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Greater(t, c.G, c.R)
				assert.Greater(t, c.G, c.B)
			},
		},
		{
			name: "full grayscale uses luma weights",
			in:   color.NRGBA{R: 255, A: 255},
			s:    Settings{Grayscale: 100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 76, int(c.R), 1)
				assert.Equal(t, c.R, c.G)
				assert.Equal(t, c.G, c.B)
			},
		},
		{
			name: "half grayscale blends",
			in:   color.NRGBA{R: 255, A: 255},
			s:    Settings{Grayscale: 50},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 166, int(c.R), 1)
				assert.InDelta(t, 38, int(c.G), 1)
			},
		},
		{
			name: "sepia warms gray",
			in:   gray(128),
			s:    Settings{Sepia: 100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Greater(t, c.R, c.B)
			},
		},
		{
			name: "full invert",
			in:   color.NRGBA{R: 200, G: 0, B: 255, A: 255},
			s:    Settings{Invert: 100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Equal(t, color.NRGBA{R: 55, G: 255, B: 0, A: 255}, c)
			},
		},
		{
			name: "half opacity",
			in:   gray(10),
			s:    Settings{Opacity: 50},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 128, int(c.A), 1)
				assert.Equal(t, uint8(10), c.R)
			},
		},
		{
			name: "zero opacity is unset",
			in:   gray(10),
			s:    Settings{Opacity: 0},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Equal(t, uint8(255), c.A)
			},
		},
		{
			name: "brightness runs before invert",
			in:   gray(100),
			s:    Settings{Brightness: 100, Invert: 100},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 55, int(c.R), 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(uniform(t, 4, 4, tt.in), tt.s, Options{})
			require.NoError(t, err)
			require.Equal(t, 4, out.Width)
			tt.check(t, out.At(2, 2))
		})
	}
}

func TestApplyBlur(t *testing.T) {
	src := uniform(t, 9, 9, gray(0))
	src.Set(4, 4, gray(255))

	out, err := Apply(src, Settings{Blur: 1}, Options{})
	require.NoError(t, err)
	assert.Less(t, out.At(4, 4).R, uint8(255))
	assert.Greater(t, out.At(3, 4).R, uint8(0))
}

func TestApplyBlurKeepsColorUnderTransparency(t *testing.T) {
	src := uniform(t, 20, 1, color.NRGBA{})
	for x := range 10 {
		src.Set(x, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	}

	out, err := Apply(src, Settings{Blur: 2}, Options{})
	require.NoError(t, err)

	feathered := 0
	for x := range out.Width {
		c := out.At(x, 0)
		if c.A == 0 {
			continue
		}
		assert.GreaterOrEqual(t, c.R, uint8(254), "x=%d", x)
		assert.GreaterOrEqual(t, c.G, uint8(254), "x=%d", x)
		assert.GreaterOrEqual(t, c.B, uint8(254), "x=%d", x)
		if c.A < 255 {
			feathered++
		}
	}
	assert.Positive(t, feathered)
}

func TestTemperatureTint(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want color.NRGBA
	}{
		{"warm", Settings{Temperature: 100}, color.NRGBA{R: 130, G: 100, B: 70, A: 255}},
		{"cool", Settings{Temperature: -50}, color.NRGBA{R: 85, G: 100, B: 115, A: 255}},
		{"tint", Settings{Tint: 100}, color.NRGBA{R: 100, G: 70, B: 100, A: 255}},
		{"negative tint", Settings{Tint: -100}, color.NRGBA{R: 100, G: 130, B: 100, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(uniform(t, 3, 3, gray(100)), tt.s, Options{})
			require.NoError(t, err)
			assertNear(t, tt.want, out.At(1, 1))
		})
	}

	t.Run("clamps", func(t *testing.T) {
		out, err := Apply(uniform(t, 1, 1, color.NRGBA{R: 250, B: 5, G: 10, A: 255}), Settings{Temperature: 100, Tint: 100}, Options{})
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, out.At(0, 0))
	})
}

// assertNear allows one step of float rounding per channel.
func assertNear(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1, "R")
	assert.InDelta(t, want.G, got.G, 1, "G")
	assert.InDelta(t, want.B, got.B, 1, "B")
	assert.Equal(t, want.A, got.A, "A")
}

func TestSharpenStage(t *testing.T) {
	src := uniform(t, 5, 5, gray(100))
	src.Set(2, 2, gray(150))

	out, err := Apply(src, Settings{Sharpen: 50}, Options{})
	require.NoError(t, err)
	// k = 1: center 150*5 - 4*100 = 350 -> 255; neighbor 100*5 - 150 - 3*100 = 50.
	assert.Equal(t, uint8(255), out.At(2, 2).R)
	assert.Equal(t, uint8(50), out.At(2, 1).R)
	assert.Equal(t, uint8(255), out.At(2, 2).A)
}

func TestVignette(t *testing.T) {
	src := uniform(t, 100, 100, gray(128))
	out, err := Apply(src, Settings{Vignette: 100}, Options{})
	require.NoError(t, err)

	center := out.At(50, 50)
	assert.Equal(t, gray(128), center)
	for _, p := range [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		corner := out.At(p[0], p[1])
		assert.Less(t, corner.R, center.R, "corner %v", p)
		assert.Equal(t, uint8(255), corner.A)
	}
}

func TestVignetteFactor(t *testing.T) {
	assert.Equal(t, 1.0, VignetteFactor(50, 50, 100, 100, 100))
	assert.InDelta(t, 0.0, VignetteFactor(0, 0, 100, 100, 100), 1e-12)
	assert.InDelta(t, 0.5, VignetteFactor(0, 0, 100, 100, 50), 1e-12)
	assert.Equal(t, 1.0, VignetteFactor(0, 0, 100, 100, 0))
}

func TestNoise(t *testing.T) {
	t.Run("seeded source is deterministic", func(t *testing.T) {
		a, err := Apply(uniform(t, 16, 16, gray(128)), Settings{Noise: 60}, Options{Rand: rand.New(rand.NewPCG(1, 2))})
		require.NoError(t, err)
		b, err := Apply(uniform(t, 16, 16, gray(128)), Settings{Noise: 60}, Options{Rand: rand.New(rand.NewPCG(1, 2))})
		require.NoError(t, err)
		assert.Equal(t, a.Pix, b.Pix)
	})

	t.Run("stays in range and leaves alpha", func(t *testing.T) {
		out, err := Apply(uniform(t, 16, 16, color.NRGBA{R: 128, G: 128, B: 128, A: 77}), Settings{Noise: 40}, Options{})
		require.NoError(t, err)
		half := 40 * 2.55 / 2
		for i := 0; i < len(out.Pix); i += 4 {
			for c := 0; c < 3; c++ {
				assert.InDelta(t, 128, float64(out.Pix[i+c]), half+1)
			}
			assert.Equal(t, uint8(77), out.Pix[i+3])
		}
	})

	t.Run("fixed sample", func(t *testing.T) {
		out, err := Apply(uniform(t, 2, 2, gray(100)), Settings{Noise: 40}, Options{Rand: constRand(0.875)})
		require.NoError(t, err)
		// (0.875*2 - 1) * 51 = 38.25
		assert.Equal(t, gray(138), out.At(1, 1))

		out, err = Apply(uniform(t, 2, 2, gray(100)), Settings{Noise: 40}, Options{Rand: constRand(0.5)})
		require.NoError(t, err)
		assert.Equal(t, gray(100), out.At(0, 0))
	})
}

func TestApplyParallelMatchesSerial(t *testing.T) {
	build := func() *images.RasterImage {
		img := uniform(t, 40, 30, gray(90))
		for x := 0; x < 40; x++ {
			img.Set(x, x%30, color.NRGBA{R: 250, G: 30, B: 90, A: 255})
		}
		return img
	}
	s := Settings{Contrast: 20, Blur: 1.5, Temperature: 30, Sharpen: 40, Vignette: 60}

	serial, err := Apply(build(), s, Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := Apply(build(), s, Options{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, serial.Pix, parallel.Pix)
}

func TestApplyInvalidImage(t *testing.T) {
	_, err := Apply(&images.RasterImage{Width: 1, Height: 1}, Settings{Brightness: 5}, Options{})
	assert.True(t, errors.Is(err, images.ErrInvalidDimension))
}

func TestPixelate(t *testing.T) {
	t.Run("averages a block", func(t *testing.T) {
		src := uniform(t, 2, 1, gray(0))
		src.Set(1, 0, gray(255))

		out, err := Pixelate(src, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Width)
		assert.Equal(t, 1, out.Height)
		assert.Equal(t, out.At(0, 0), out.At(1, 0))
		assert.InDelta(t, 128, int(out.At(0, 0).R), 1)
	})

	t.Run("keeps dimensions for ragged blocks", func(t *testing.T) {
		out, err := Pixelate(uniform(t, 17, 11, gray(40)), 4)
		require.NoError(t, err)
		assert.Equal(t, 17, out.Width)
		assert.Equal(t, 11, out.Height)
		assert.Equal(t, gray(40), out.At(16, 10))
	})

	t.Run("block of one copies", func(t *testing.T) {
		src := uniform(t, 3, 3, gray(7))
		out, err := Pixelate(src, 1)
		require.NoError(t, err)
		assert.Equal(t, src.Pix, out.Pix)
		assert.NotSame(t, src, out)
	})

	t.Run("invalid block size", func(t *testing.T) {
		_, err := Pixelate(uniform(t, 3, 3, gray(7)), 0)
		assert.True(t, errors.Is(err, images.ErrInvalidDimension))
	})
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	assert.Contains(t, names, "noir")
	assert.IsNonDecreasing(t, names)

	s, ok := Preset(" Noir ")
	require.True(t, ok)
	assert.Equal(t, 100.0, s.Grayscale)

	_, ok = Preset("lomo")
	assert.False(t, ok)

	for _, name := range names {
		p, _ := Preset(name)
		assert.False(t, p.IsNeutral(), name)
		assert.Equal(t, p, p.Normalize(), name)
	}
}
