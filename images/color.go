package images

import (
	"image/color"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Commonly used colors.
var (
	// White is opaque white, the default fill for rotation and flattening.
	White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// Black is opaque black, the default meme stroke color.
	Black = color.NRGBA{A: 0xff}
	// Transparent is fully transparent black.
	Transparent = color.NRGBA{}
)

var namedColors = map[string]color.NRGBA{
	"white":       White,
	"black":       Black,
	"transparent": Transparent,
	"red":         {R: 0xff, A: 0xff},
	"green":       {G: 0x80, A: 0xff},
	"blue":        {B: 0xff, A: 0xff},
	"yellow":      {R: 0xff, G: 0xff, A: 0xff},
	"gray":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"grey":        {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// ColorNames returns the names ParseColor accepts, sorted.
func ColorNames() []string {
	names := lo.Keys(namedColors)
	slices.Sort(names)
	return names
}

// ParseColor parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" or a small set of
// color names.
//
// Arguments:
//   - s: The color string.
//
// Returns:
//   - color.NRGBA: The parsed color.
//   - error: An error if the string is not a recognized color.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") {
		return color.NRGBA{}, errors.Errorf("invalid color %q", s)
	}
	hex := v[1:]

	// Expand the short forms so a single parse path handles everything.
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, ch := range hex {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, errors.Errorf("invalid color %q", s)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(n >> 24),
		G: uint8(n >> 16),
		B: uint8(n >> 8),
		A: uint8(n),
	}, nil
}

// HexColor formats c as "#rrggbb" when opaque, "#rrggbbaa" otherwise.
func HexColor(c color.NRGBA) string {
	s := "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
	if c.A != 0xff {
		s += hexByte(c.A)
	}
	return s
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
