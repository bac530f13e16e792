// Package filters implements the editor's adjustment pipeline: scalar color
// filters, temperature and tint, sharpen, vignette and noise, plus pixelation.
package filters

import (
	"math"

	"github.com/nvr-ai/go-imagekit/images"
)

// Settings holds the editor sliders. The zero value is neutral.
type Settings struct {
	// Brightness in [-100, 100]; multiplies RGB by 1 + v/100.
	Brightness float64 `json:"brightness" yaml:"brightness" mapstructure:"brightness"`
	// Contrast in [-100, 100]; scales around mid-gray by 1 + v/100.
	Contrast float64 `json:"contrast" yaml:"contrast" mapstructure:"contrast"`
	// Saturation in [-100, 100]; -100 removes all color.
	Saturation float64 `json:"saturation" yaml:"saturation" mapstructure:"saturation"`
	// Blur in [0, 20]; Gaussian sigma in pixels.
	Blur float64 `json:"blur" yaml:"blur" mapstructure:"blur"`
	// Grayscale in [0, 100]; blend weight of the fully desaturated image.
	Grayscale float64 `json:"grayscale" yaml:"grayscale" mapstructure:"grayscale"`
	// Sepia in [0, 100]; blend weight of the sepia-toned image.
	Sepia float64 `json:"sepia" yaml:"sepia" mapstructure:"sepia"`
	// Invert in [0, 100]; blend weight of the inverted image.
	Invert float64 `json:"invert" yaml:"invert" mapstructure:"invert"`
	// HueRotate in [0, 360) degrees.
	HueRotate float64 `json:"hueRotate" yaml:"hueRotate" mapstructure:"hueRotate"`
	// Opacity in [0, 100]; 0 means unset, otherwise alpha is multiplied by v/100.
	Opacity float64 `json:"opacity" yaml:"opacity" mapstructure:"opacity"`
	// Sharpen in [0, 100].
	Sharpen float64 `json:"sharpen" yaml:"sharpen" mapstructure:"sharpen"`
	// Vignette in [0, 100].
	Vignette float64 `json:"vignette" yaml:"vignette" mapstructure:"vignette"`
	// Noise in [0, 100].
	Noise float64 `json:"noise" yaml:"noise" mapstructure:"noise"`
	// Temperature in [-100, 100]; positive warms.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	// Tint in [-100, 100]; positive shifts towards magenta.
	Tint float64 `json:"tint" yaml:"tint" mapstructure:"tint"`
}

// Normalize clamps every slider into its range and wraps HueRotate into
// [0, 360). NaN values become neutral.
func (s Settings) Normalize() Settings {
	s.Brightness = clampSlider(s.Brightness, -100, 100)
	s.Contrast = clampSlider(s.Contrast, -100, 100)
	s.Saturation = clampSlider(s.Saturation, -100, 100)
	s.Blur = clampSlider(s.Blur, 0, 20)
	s.Grayscale = clampSlider(s.Grayscale, 0, 100)
	s.Sepia = clampSlider(s.Sepia, 0, 100)
	s.Invert = clampSlider(s.Invert, 0, 100)
	s.Opacity = clampSlider(s.Opacity, 0, 100)
	s.Sharpen = clampSlider(s.Sharpen, 0, 100)
	s.Vignette = clampSlider(s.Vignette, 0, 100)
	s.Noise = clampSlider(s.Noise, 0, 100)
	s.Temperature = clampSlider(s.Temperature, -100, 100)
	s.Tint = clampSlider(s.Tint, -100, 100)

	h := s.HueRotate
	if math.IsNaN(h) || math.IsInf(h, 0) {
		h = 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s.HueRotate = h
	return s
}

// IsNeutral reports whether applying s would leave the image unchanged.
func (s Settings) IsNeutral() bool {
	n := s.Normalize()
	return !n.hasScalar() && !n.hasBlur() && n.Temperature == 0 && n.Tint == 0 &&
		n.Sharpen == 0 && n.Vignette == 0 && n.Noise == 0
}

func (s Settings) hasScalar() bool {
	return s.Brightness != 0 || s.Contrast != 0 || s.Saturation != 0 || s.HueRotate != 0 ||
		s.Grayscale != 0 || s.Sepia != 0 || s.Invert != 0 || s.hasOpacity()
}

func (s Settings) hasOpacity() bool {
	return s.Opacity > 0 && s.Opacity < 100
}

func (s Settings) hasBlur() bool {
	return s.Blur >= 0.1
}

func clampSlider(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return images.Clamp(v, lo, hi)
}
