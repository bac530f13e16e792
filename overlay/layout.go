package overlay

import (
	"strings"
)

// LineHeightFactor is the line box height as a multiple of the font size.
const LineHeightFactor = 1.2

// AnchorKind selects how a text block is positioned vertically.
type AnchorKind int

// Anchor kinds.
const (
	AnchorTop AnchorKind = iota
	AnchorBottom
	AnchorCustom
)

// Anchor positions a text block on the canvas.
type Anchor struct {
	Kind AnchorKind
	// X and Y are the top-left corner of the block for AnchorCustom.
	X, Y float64
}

// TopAnchor grows the block downwards from the top padding.
func TopAnchor() Anchor { return Anchor{Kind: AnchorTop} }

// BottomAnchor keeps the block's bottom edge at the bottom padding.
func BottomAnchor() Anchor { return Anchor{Kind: AnchorBottom} }

// CustomAnchor places the block's top-left corner at (x, y).
func CustomAnchor(x, y float64) Anchor { return Anchor{Kind: AnchorCustom, X: x, Y: y} }

// TextBlock is one run of wrapped text.
type TextBlock struct {
	Text       string
	MaxWidth   float64
	FontSize   float64
	FontFamily string
	Anchor     Anchor
	// Uppercase converts the text before wrapping.
	Uppercase bool
}

// Font returns the block's font spec.
func (b TextBlock) Font() FontSpec {
	return FontSpec{Family: b.FontFamily, Size: b.FontSize}
}

// Line is one laid-out line. X and Y are the top-left corner of its line box.
type Line struct {
	Text  string
	X, Y  float64
	Width float64
}

// Layout is a positioned text block.
type Layout struct {
	Lines      []Line
	LineHeight float64
	Font       FontSpec
}

// Height returns the total block height.
func (l Layout) Height() float64 {
	return float64(len(l.Lines)) * l.LineHeight
}

// WrapText greedily packs words into lines no wider than maxWidth.
//
// A word that is wider than maxWidth on its own occupies a line by itself; words
// are never hyphenated or split. Runs of whitespace collapse to one space.
//
// Arguments:
//   - m: The measurer used for line widths.
//   - text: The text to wrap.
//   - f: The font the text is rendered with.
//   - maxWidth: The maximum line width in pixels.
//
// Returns:
//   - []string: The lines, empty for blank text.
//
// @example
// lines := WrapText(FaceMeasurer{Fonts: reg}, "ONE DOES NOT SIMPLY", FontSpec{Size: 48}, 300)
func WrapText(m TextMeasurer, text string, f FontSpec, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		candidate := current + " " + word
		if m.Measure(candidate, f) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// LayoutBlock wraps and positions a block on a canvasW x canvasH canvas.
//
// Lines are LineHeightFactor*FontSize apart. Top blocks start at padding;
// bottom blocks start at canvasH - lines*lineHeight - padding so the block ends
// padding above the bottom edge whatever its line count. Top and bottom lines
// are centered horizontally; custom blocks start at the anchor's X.
//
// Arguments:
//   - m: The measurer used for wrapping and centering.
//   - b: The block.
//   - canvasW: The canvas width.
//   - canvasH: The canvas height.
//   - padding: The distance from the anchored edge.
//
// Returns:
//   - Layout: The positioned lines.
func LayoutBlock(m TextMeasurer, b TextBlock, canvasW, canvasH, padding float64) Layout {
	text := b.Text
	if b.Uppercase {
		text = strings.ToUpper(text)
	}

	f := b.Font()
	out := Layout{LineHeight: b.FontSize * LineHeightFactor, Font: f}
	wrapped := WrapText(m, text, f, b.MaxWidth)

	var y float64
	switch b.Anchor.Kind {
	case AnchorBottom:
		y = canvasH - float64(len(wrapped))*out.LineHeight - padding
	case AnchorCustom:
		y = b.Anchor.Y
	default:
		y = padding
	}

	for i, text := range wrapped {
		w := m.Measure(text, f)
		x := (canvasW - w) / 2
		if b.Anchor.Kind == AnchorCustom {
			x = b.Anchor.X
		}
		out.Lines = append(out.Lines, Line{
			Text:  text,
			X:     x,
			Y:     y + float64(i)*out.LineHeight,
			Width: w,
		})
	}
	return out
}
