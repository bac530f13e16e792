package overlay

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/nvr-ai/go-imagekit/images"
)

// Meme caption defaults.
const (
	DefaultPadding     = 20.0
	DefaultStrokeWidth = 2.0
	// memeFontDivisor sizes captions at canvas width / 10 when no size is given.
	memeFontDivisor = 10.0
)

// MemeOptions describes top and bottom captions.
type MemeOptions struct {
	TopText    string `json:"topText" yaml:"topText"`
	BottomText string `json:"bottomText" yaml:"bottomText"`
	// FontSize in pixels; 0 picks canvas width / 10.
	FontSize float64 `json:"fontSize,omitempty" yaml:"fontSize"`
	// FontColor defaults to white.
	FontColor *color.NRGBA `json:"fontColor,omitempty" yaml:"fontColor"`
	// FontFamily defaults to "impact".
	FontFamily string `json:"fontFamily,omitempty" yaml:"fontFamily"`
	// StrokeColor defaults to black.
	StrokeColor *color.NRGBA `json:"strokeColor,omitempty" yaml:"strokeColor"`
	// StrokeWidth in pixels; 0 picks 2, negative disables the outline.
	StrokeWidth float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth"`
	// Padding from the top and bottom edges; 0 picks 20.
	Padding float64 `json:"padding,omitempty" yaml:"padding"`
	// NoShadow turns off the drop shadow.
	NoShadow bool `json:"noShadow,omitempty" yaml:"noShadow"`
}

// withDefaults fills unset fields for a canvas of the given width.
func (o MemeOptions) withDefaults(canvasW int) MemeOptions {
	if o.FontSize <= 0 {
		o.FontSize = math.Max(1, math.Round(float64(canvasW)/memeFontDivisor))
	}
	if o.FontColor == nil {
		c := images.White
		o.FontColor = &c
	}
	if o.StrokeColor == nil {
		c := images.Black
		o.StrokeColor = &c
	}
	if strings.TrimSpace(o.FontFamily) == "" {
		o.FontFamily = FamilyImpact
	}
	switch {
	case o.StrokeWidth == 0:
		o.StrokeWidth = DefaultStrokeWidth
	case o.StrokeWidth < 0:
		o.StrokeWidth = 0
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	return o
}

// MemeLayout wraps and anchors both captions without rendering them.
//
// Arguments:
//   - m: The measurer.
//   - opts: The captions and styling.
//   - canvasW: The canvas width.
//   - canvasH: The canvas height.
//
// Returns:
//   - []Layout: The top layout (if any) followed by the bottom layout (if any).
//   - error: ErrMissingOverlayContent when both captions are blank.
func MemeLayout(m TextMeasurer, opts MemeOptions, canvasW, canvasH int) ([]Layout, error) {
	if strings.TrimSpace(opts.TopText) == "" && strings.TrimSpace(opts.BottomText) == "" {
		return nil, images.NewOpError("meme", "text", nil, images.ErrMissingOverlayContent)
	}
	opts = opts.withDefaults(canvasW)

	maxWidth := float64(canvasW) - 2*opts.Padding
	block := func(text string, anchor Anchor) TextBlock {
		return TextBlock{
			Text:       text,
			MaxWidth:   maxWidth,
			FontSize:   opts.FontSize,
			FontFamily: opts.FontFamily,
			Anchor:     anchor,
			Uppercase:  true,
		}
	}

	var layouts []Layout
	if strings.TrimSpace(opts.TopText) != "" {
		layouts = append(layouts, LayoutBlock(m, block(opts.TopText, TopAnchor()), float64(canvasW), float64(canvasH), opts.Padding))
	}
	if strings.TrimSpace(opts.BottomText) != "" {
		layouts = append(layouts, LayoutBlock(m, block(opts.BottomText, BottomAnchor()), float64(canvasW), float64(canvasH), opts.Padding))
	}
	return layouts, nil
}

// Renderer draws overlays with fonts from a registry.
type Renderer struct {
	Fonts *FontRegistry
}

// NewRenderer returns a renderer backed by the built-in fonts.
func NewRenderer() (*Renderer, error) {
	fonts, err := NewFontRegistry()
	if err != nil {
		return nil, err
	}
	return &Renderer{Fonts: fonts}, nil
}

// Measurer returns a TextMeasurer using the renderer's fonts.
func (r *Renderer) Measurer() TextMeasurer {
	return FaceMeasurer{Fonts: r.Fonts}
}

// Meme draws upper-cased top and bottom captions onto img.
//
// Each line is drawn shadow first, then outline, then fill.
//
// Arguments:
//   - img: The base image; it is not modified.
//   - opts: The captions and styling.
//
// Returns:
//   - *images.RasterImage: The captioned image.
//   - error: ErrMissingOverlayContent when both captions are blank.
func (r *Renderer) Meme(img *images.RasterImage, opts MemeOptions) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	layouts, err := MemeLayout(r.Measurer(), opts, img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults(img.Width)

	st := NewDrawState(*opts.FontColor).WithStroke(*opts.StrokeColor, opts.StrokeWidth)
	if !opts.NoShadow {
		st = st.WithShadow(DefaultShadow())
	}

	out := img
	for _, l := range layouts {
		face := r.Fonts.Face(l.Font)
		layer := RenderLayer(img.Width, img.Height, face, l, st)
		_ = face.Close()
		out = composite(out, layer, image.Point{}, st.Opacity)
	}
	return out, nil
}
