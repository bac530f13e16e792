package overlay

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-imagekit/images"
)

// Position is a watermark anchor.
type Position string

// Watermark anchors.
const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenter      Position = "center"
)

// Positions lists every watermark anchor.
var Positions = []Position{
	PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight, PositionCenter,
}

// ParsePosition normalizes an anchor name. The empty string selects bottom-right.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if p == "" {
		return PositionBottomRight, nil
	}
	for _, known := range Positions {
		if p == known {
			return p, nil
		}
	}
	return "", errors.Errorf("unknown watermark position %q", s)
}

// Watermark defaults.
const (
	DefaultWatermarkOpacity  = 0.5
	DefaultWatermarkFontSize = 32.0
	// MaxLogoFraction bounds a logo to this share of the canvas width and height.
	MaxLogoFraction = 0.2
)

// WatermarkOptions describes a text or logo watermark.
type WatermarkOptions struct {
	// Text is drawn when Logo is nil.
	Text string `json:"text,omitempty" yaml:"text"`
	// Logo is a decoded image drawn instead of Text.
	Logo *images.RasterImage `json:"-" yaml:"-"`
	// Position defaults to bottom-right.
	Position Position `json:"position,omitempty" yaml:"position"`
	// Opacity in (0, 1]; 0 picks 0.5.
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity"`
	// FontSize in pixels; 0 picks 32.
	FontSize float64 `json:"fontSize,omitempty" yaml:"fontSize"`
	// FontColor defaults to white.
	FontColor *color.NRGBA `json:"fontColor,omitempty" yaml:"fontColor"`
	// FontFamily defaults to sans.
	FontFamily string `json:"fontFamily,omitempty" yaml:"fontFamily"`
	// Padding from the anchored edges; 0 picks 20.
	Padding float64 `json:"padding,omitempty" yaml:"padding"`
}

func (o WatermarkOptions) withDefaults() WatermarkOptions {
	if o.Position == "" {
		o.Position = PositionBottomRight
	}
	if o.Opacity <= 0 {
		o.Opacity = DefaultWatermarkOpacity
	}
	o.Opacity = math.Min(o.Opacity, 1)
	if o.FontSize <= 0 {
		o.FontSize = DefaultWatermarkFontSize
	}
	if o.FontColor == nil {
		c := images.White
		o.FontColor = &c
	}
	if strings.TrimSpace(o.FontFamily) == "" {
		o.FontFamily = FamilySans
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	return o
}

// Place returns the top-left corner of a w x h item anchored at pos on a
// canvasW x canvasH canvas, padding pixels from the anchored edges.
//
// @example
// pt := Place(PositionBottomRight, 800, 600, 100, 50, 20) // (680, 530)
func Place(pos Position, canvasW, canvasH, w, h int, padding float64) image.Point {
	pad := int(math.Round(padding))
	switch pos {
	case PositionTopLeft:
		return image.Pt(pad, pad)
	case PositionTopRight:
		return image.Pt(canvasW-w-pad, pad)
	case PositionBottomLeft:
		return image.Pt(pad, canvasH-h-pad)
	case PositionCenter:
		return image.Pt((canvasW-w)/2, (canvasH-h)/2)
	default:
		return image.Pt(canvasW-w-pad, canvasH-h-pad)
	}
}

// LogoBounds returns the size a logo is drawn at: unchanged when it fits in
// MaxLogoFraction of the canvas on both axes, otherwise uniformly scaled down
// to fit that box.
func LogoBounds(canvasW, canvasH, logoW, logoH int) (int, int) {
	maxW := float64(canvasW) * MaxLogoFraction
	maxH := float64(canvasH) * MaxLogoFraction
	if float64(logoW) <= maxW && float64(logoH) <= maxH {
		return logoW, logoH
	}
	scale := math.Min(maxW/float64(logoW), maxH/float64(logoH))
	return max(1, int(math.Round(float64(logoW)*scale))), max(1, int(math.Round(float64(logoH)*scale)))
}

// Watermark draws a logo or a single line of text at one of five anchors.
// Opacity applies to the watermark only, never to the base image.
//
// Arguments:
//   - img: The base image; it is not modified.
//   - opts: The watermark content and styling.
//
// Returns:
//   - *images.RasterImage: The watermarked image.
//   - error: ErrMissingOverlayContent when there is neither text nor logo.
func (r *Renderer) Watermark(img *images.RasterImage, opts WatermarkOptions) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if opts.Logo == nil && strings.TrimSpace(opts.Text) == "" {
		return nil, images.NewOpError("watermark", "content", nil, images.ErrMissingOverlayContent)
	}
	pos, err := ParsePosition(string(opts.Position))
	if err != nil {
		return nil, images.NewOpError("watermark", "position", opts.Position, err)
	}
	opts.Position = pos
	opts = opts.withDefaults()

	if opts.Logo != nil {
		if err := opts.Logo.Validate(); err != nil {
			return nil, err
		}
		w, h := LogoBounds(img.Width, img.Height, opts.Logo.Width, opts.Logo.Height)
		var logo image.Image = opts.Logo.NRGBA()
		if w != opts.Logo.Width || h != opts.Logo.Height {
			logo = imaging.Fit(logo, w, h, imaging.Lanczos)
		}
		b := logo.Bounds()
		pt := Place(opts.Position, img.Width, img.Height, b.Dx(), b.Dy(), opts.Padding)
		return composite(img, logo, pt, opts.Opacity), nil
	}

	f := FontSpec{Family: opts.FontFamily, Size: opts.FontSize}
	m := r.Measurer()
	text := strings.Join(strings.Fields(opts.Text), " ")
	width := m.Measure(text, f)
	lineHeight := opts.FontSize * LineHeightFactor

	pt := Place(opts.Position, img.Width, img.Height, int(math.Ceil(width)), int(math.Ceil(lineHeight)), opts.Padding)
	l := Layout{
		Lines:      []Line{{Text: text, X: float64(pt.X), Y: float64(pt.Y), Width: width}},
		LineHeight: lineHeight,
		Font:       f,
	}

	face := r.Fonts.Face(f)
	defer face.Close()
	layer := RenderLayer(img.Width, img.Height, face, l, NewDrawState(*opts.FontColor))
	return composite(img, layer, image.Point{}, opts.Opacity), nil
}
