package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/images/kernels"
)

// Shadow is a soft drop shadow drawn beneath text.
type Shadow struct {
	Color   color.NRGBA
	OffsetX int
	OffsetY int
	// Blur is the box blur radius applied to the shadow layer.
	Blur int
}

// DefaultShadow is the legibility shadow used under meme captions.
func DefaultShadow() Shadow {
	return Shadow{Color: color.NRGBA{A: 128}, OffsetX: 2, OffsetY: 2, Blur: 2}
}

// DrawState carries every style parameter of a draw call. It is passed by
// value; the With helpers return modified copies.
type DrawState struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	// Shadow is drawn first when set.
	Shadow *Shadow
	// Opacity in [0, 1] scales the whole rendered layer.
	Opacity float64
}

// NewDrawState returns an opaque fill-only state.
func NewDrawState(fill color.NRGBA) DrawState {
	return DrawState{Fill: fill, Opacity: 1}
}

// WithStroke returns a copy with an outline.
func (s DrawState) WithStroke(c color.NRGBA, width float64) DrawState {
	s.Stroke = c
	s.StrokeWidth = width
	return s
}

// WithShadow returns a copy with a drop shadow.
func (s DrawState) WithShadow(sh Shadow) DrawState {
	s.Shadow = &sh
	return s
}

// WithOpacity returns a copy with the given layer opacity.
func (s DrawState) WithOpacity(o float64) DrawState {
	s.Opacity = o
	return s
}

// strokeOffsets lists the integer offsets inside a disc of radius r,
// excluding the center.
func strokeOffsets(r float64) []image.Point {
	n := int(math.Ceil(r))
	var pts []image.Point
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if (dx == 0 && dy == 0) || float64(dx*dx+dy*dy) > r*r {
				continue
			}
			pts = append(pts, image.Pt(dx, dy))
		}
	}
	return pts
}

// baseline returns the baseline y of a line whose box starts at top, centering
// the face's ascent+descent inside the line box.
func baseline(face font.Face, top, lineHeight float64) float64 {
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	return top + (lineHeight+ascent-descent)/2
}

// drawLines draws every line in one color, shifted by (dx, dy).
func drawLines(dst draw.Image, face font.Face, l Layout, c color.NRGBA, dx, dy int) {
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	for _, line := range l.Lines {
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(math.Round((line.X + float64(dx)) * 64)),
			Y: fixed.Int26_6(math.Round((baseline(face, line.Y, l.LineHeight) + float64(dy)) * 64)),
		}
		d.DrawString(line.Text)
	}
}

// RenderLayer draws a layout onto a transparent w x h layer in the order
// shadow, stroke, fill. Stroke goes first so the fill stays fully visible.
//
// Arguments:
//   - w: The layer width.
//   - h: The layer height.
//   - face: The font face, matching l.Font.
//   - l: The laid-out text.
//   - st: The style.
//
// Returns:
//   - *image.NRGBA: The rendered layer.
func RenderLayer(w, h int, face font.Face, l Layout, st DrawState) *image.NRGBA {
	layer := image.NewNRGBA(image.Rect(0, 0, w, h))
	offsets := strokeOffsets(st.StrokeWidth)

	if st.Shadow != nil {
		sh := *st.Shadow
		shadow := &images.RasterImage{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
		dst := shadow.NRGBA()
		drawLines(dst, face, l, sh.Color, sh.OffsetX, sh.OffsetY)
		for _, o := range offsets {
			drawLines(dst, face, l, sh.Color, sh.OffsetX+o.X, sh.OffsetY+o.Y)
		}
		if sh.Blur > 0 {
			shadow = kernels.BoxBlur(shadow, kernels.Options{Radius: sh.Blur})
		}
		draw.Draw(layer, layer.Bounds(), shadow.NRGBA(), image.Point{}, draw.Over)
	}

	for _, o := range offsets {
		drawLines(layer, face, l, st.Stroke, o.X, o.Y)
	}
	drawLines(layer, face, l, st.Fill, 0, 0)
	return layer
}

// composite blends layer over img at pt with the given opacity and returns
// the result as a new raster.
func composite(img *images.RasterImage, layer image.Image, pt image.Point, opacity float64) *images.RasterImage {
	out := imaging.Overlay(img.NRGBA(), layer, pt, images.Clamp(opacity, 0, 1))
	return images.FromImage(out)
}
