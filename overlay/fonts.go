// Package overlay lays out and renders text and logo overlays: meme captions
// anchored to the top and bottom edges, and positioned watermarks.
//
// Layout is separated from rendering through TextMeasurer, so line wrapping
// and anchoring can be exercised without loading any fonts.
package overlay

import (
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Built-in font families.
const (
	FamilySans   = "sans"
	FamilyBold   = "bold"
	FamilyMono   = "mono"
	FamilyImpact = "impact"
)

// dpi is fixed at 72 so one point equals one pixel.
const dpi = 72

// FontSpec identifies a font face.
type FontSpec struct {
	// Family is a registered family name; unknown names fall back to the default.
	Family string `json:"family" yaml:"family"`
	// Size is the em size in pixels.
	Size float64 `json:"size" yaml:"size"`
}

// TextMeasurer reports the rendered width of a string.
type TextMeasurer interface {
	Measure(text string, f FontSpec) float64
}

// FontRegistry maps family names to parsed TrueType fonts.
type FontRegistry struct {
	mu       sync.RWMutex
	fonts    map[string]*truetype.Font
	fallback string
}

// NewFontRegistry returns a registry preloaded with the Go fonts. "impact" is
// an alias for Go Bold until a real Impact font is registered.
//
// Returns:
//   - *FontRegistry: The registry.
//   - error: An error if a bundled font fails to parse.
func NewFontRegistry() (*FontRegistry, error) {
	r := &FontRegistry{fonts: make(map[string]*truetype.Font), fallback: FamilySans}
	for name, ttf := range map[string][]byte{
		FamilySans:   goregular.TTF,
		FamilyBold:   gobold.TTF,
		FamilyMono:   gomono.TTF,
		FamilyImpact: gobold.TTF,
	} {
		if err := r.Register(name, ttf); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register parses ttf and stores it under name, replacing any previous font.
func (r *FontRegistry) Register(name string, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return errors.Wrapf(err, "parse font %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fonts[normalizeFamily(name)] = f
	return nil
}

// RegisterFile loads a .ttf file and registers it under name.
func (r *FontRegistry) RegisterFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read font %q", path)
	}
	return r.Register(name, data)
}

// Font returns the font for family, or the fallback if it is not registered.
func (r *FontRegistry) Font(family string) *truetype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.fonts[normalizeFamily(family)]; ok {
		return f
	}
	return r.fonts[r.fallback]
}

// Has reports whether family is registered.
func (r *FontRegistry) Has(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fonts[normalizeFamily(family)]
	return ok
}

// Face builds a new face for f. Faces cache glyphs and are not safe for
// concurrent use, so each render gets its own.
func (r *FontRegistry) Face(f FontSpec) font.Face {
	return truetype.NewFace(r.Font(f.Family), &truetype.Options{
		Size:    f.Size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

func normalizeFamily(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	// Accept CSS-ish family lists such as "Impact, sans-serif".
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return strings.Trim(name, `"'`)
}

// FaceMeasurer measures text with real TrueType metrics.
type FaceMeasurer struct {
	Fonts *FontRegistry
}

// Measure implements TextMeasurer.
func (m FaceMeasurer) Measure(text string, f FontSpec) float64 {
	face := m.Fonts.Face(f)
	defer face.Close()
	return float64(font.MeasureString(face, text)) / 64
}
