package filters

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/images/kernels"
)

// RandSource supplies uniform floats in [0, 1). *math/rand/v2.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Options controls how the pipeline runs, not what it does.
type Options struct {
	// Workers enables row parallelism when > 1. Default is serial.
	Workers int
	// Rand drives the noise stage; nil uses the math/rand/v2 global source.
	Rand RandSource
}

// Stage names in application order.
const (
	StageScalar      = "scalar"
	StageBlur        = "blur"
	StageTemperature = "temperature"
	StageSharpen     = "sharpen"
	StageVignette    = "vignette"
	StageNoise       = "noise"
)

// Stages returns the names of the stages s would run, in order. Neutral
// stages are omitted.
func Stages(s Settings) []string {
	s = s.Normalize()
	var out []string
	if s.hasScalar() {
		out = append(out, StageScalar)
	}
	if s.hasBlur() {
		out = append(out, StageBlur)
	}
	if s.Temperature != 0 || s.Tint != 0 {
		out = append(out, StageTemperature)
	}
	if s.Sharpen != 0 {
		out = append(out, StageSharpen)
	}
	if s.Vignette != 0 {
		out = append(out, StageVignette)
	}
	if s.Noise != 0 {
		out = append(out, StageNoise)
	}
	return out
}

// Apply runs the filter pipeline.
//
// Stage order is fixed: scalar filters (brightness, contrast, saturation, hue,
// grayscale, sepia, invert, opacity, then blur), temperature/tint, sharpen,
// vignette, noise. Each stage sees the previous stage's output and is skipped
// when its sliders are neutral.
//
// Arguments:
//   - img: The source raster. It may be modified and must not be used afterwards.
//   - s: The slider values; out-of-range values are clamped.
//   - opt: Worker count and random source.
//
// Returns:
//   - *images.RasterImage: The filtered raster.
//   - error: An error if img is malformed.
func Apply(img *images.RasterImage, s Settings, opt Options) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	s = s.Normalize()

	for _, stage := range Stages(s) {
		switch stage {
		case StageScalar:
			img = drawGift(img, opt, scalarFilters(s)...)
		case StageBlur:
			img = kernels.GaussianBlur(img, kernels.Options{Sigma: s.Blur, Workers: opt.Workers})
		case StageTemperature:
			img = drawGift(img, opt, temperatureTint(s.Temperature, s.Tint))
		case StageSharpen:
			img = kernels.Convolve3x3(img, kernels.SharpenKernel(s.Sharpen), opt.Workers)
		case StageVignette:
			applyVignette(img, s.Vignette, opt.Workers)
		case StageNoise:
			applyNoise(img, s.Noise, opt.Rand)
		}
	}
	return img, nil
}

// scalarFilters builds the gift chain for the global color adjustments.
func scalarFilters(s Settings) []gift.Filter {
	var fs []gift.Filter

	if s.Brightness != 0 {
		m := float32(1 + s.Brightness/100)
		fs = append(fs, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
			return r * m, g * m, b * m, a
		}))
	}
	if s.Contrast != 0 {
		m := float32(1 + s.Contrast/100)
		fs = append(fs, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
			return (r-0.5)*m + 0.5, (g-0.5)*m + 0.5, (b-0.5)*m + 0.5, a
		}))
	}
	if s.Saturation != 0 {
		fs = append(fs, gift.Saturation(float32(s.Saturation)))
	}
	if s.HueRotate != 0 {
		shift := s.HueRotate
		if shift > 180 {
			shift -= 360
		}
		fs = append(fs, gift.Hue(float32(shift)))
	}
	if s.Grayscale != 0 {
		t := float32(s.Grayscale / 100)
		fs = append(fs, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
			y := 0.299*r + 0.587*g + 0.114*b
			return r + (y-r)*t, g + (y-g)*t, b + (y-b)*t, a
		}))
	}
	if s.Sepia != 0 {
		fs = append(fs, gift.Sepia(float32(s.Sepia)))
	}
	if s.Invert != 0 {
		t := float32(s.Invert / 100)
		fs = append(fs, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
			return r + (1-2*r)*t, g + (1-2*g)*t, b + (1-2*b)*t, a
		}))
	}
	if s.hasOpacity() {
		m := float32(s.Opacity / 100)
		fs = append(fs, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
			return r, g, b, a * m
		}))
	}
	return fs
}

// drawGift runs a gift chain over img into a new raster.
func drawGift(img *images.RasterImage, opt Options, fs ...gift.Filter) *images.RasterImage {
	g := gift.New(fs...)
	g.SetParallelization(opt.Workers > 1)

	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img.NRGBA())
	return images.FromImage(dst)
}
