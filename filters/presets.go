package filters

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// presets are one-click looks offered next to the sliders.
var presets = map[string]Settings{
	"vintage":  {Sepia: 40, Contrast: 10, Saturation: -20, Vignette: 30, Noise: 8},
	"noir":     {Grayscale: 100, Contrast: 30, Vignette: 40},
	"warm":     {Temperature: 40, Saturation: 10},
	"cool":     {Temperature: -40, Tint: -10},
	"dramatic": {Contrast: 40, Saturation: 20, Sharpen: 30, Vignette: 25},
	"fade":     {Brightness: 10, Contrast: -25, Saturation: -30},
	"invert":   {Invert: 100},
}

// Preset returns the named look, matching case-insensitively.
func Preset(name string) (Settings, bool) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// PresetNames lists the available looks alphabetically.
func PresetNames() []string {
	names := lo.Keys(presets)
	sort.Strings(names)
	return names
}
