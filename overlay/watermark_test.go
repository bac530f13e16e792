package overlay

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imagekit/images"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{in: "", want: PositionBottomRight},
		{in: "Top-Left", want: PositionTopLeft},
		{in: "bottom_right", want: PositionBottomRight},
		{in: " center ", want: PositionCenter},
		{in: "middle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		pos  Position
		want image.Point
	}{
		{PositionTopLeft, image.Pt(20, 20)},
		{PositionTopRight, image.Pt(680, 20)},
		{PositionBottomLeft, image.Pt(20, 530)},
		{PositionBottomRight, image.Pt(680, 530)},
		{PositionCenter, image.Pt(350, 275)},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, Place(tt.pos, 800, 600, 100, 50, 20))
		})
	}
}

func TestLogoBounds(t *testing.T) {
	tests := []struct {
		name         string
		logoW, logoH int
		wantW, wantH int
	}{
		{name: "small logo kept", logoW: 100, logoH: 50, wantW: 100, wantH: 50},
		{name: "wide logo limited by width", logoW: 400, logoH: 100, wantW: 200, wantH: 50},
		{name: "tall logo limited by height", logoW: 100, logoH: 400, wantW: 25, wantH: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := LogoBounds(1000, 500, tt.logoW, tt.logoH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestWatermarkLogo(t *testing.T) {
	r := newRenderer(t)
	base := canvas(t, 200, 100, images.Black)
	logo := canvas(t, 100, 100, images.White)

	out, err := r.Watermark(base, WatermarkOptions{Logo: logo, Position: PositionTopLeft, Padding: 10})
	require.NoError(t, err)

	// Logo fits into 20x20 at (10, 10) and is blended at 50%.
	inside := out.At(15, 15)
	assert.InDelta(t, 127, int(inside.R), 2)
	assert.Equal(t, uint8(255), inside.A)
	assert.Equal(t, images.Black, out.At(5, 5))
	assert.Equal(t, images.Black, out.At(35, 35))
	assert.Equal(t, images.Black, base.At(15, 15), "input must not change")
}

func TestWatermarkOpacity(t *testing.T) {
	r := newRenderer(t)
	base := canvas(t, 100, 100, images.Black)
	logo := canvas(t, 10, 10, images.White)

	out, err := r.Watermark(base, WatermarkOptions{Logo: logo, Position: PositionCenter, Opacity: 1})
	require.NoError(t, err)
	assert.Equal(t, images.White, out.At(50, 50))
}

func TestWatermarkText(t *testing.T) {
	r := newRenderer(t)
	base := canvas(t, 400, 200, images.Black)

	out, err := r.Watermark(base, WatermarkOptions{Text: "(c) imagekit", Position: PositionBottomRight, Opacity: 1})
	require.NoError(t, err)

	changedBottomRight, changedTopLeft := 0, 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			if out.At(x, y) == images.Black {
				continue
			}
			if x >= 200 && y >= 100 {
				changedBottomRight++
			}
			if x < 150 && y < 100 {
				changedTopLeft++
			}
		}
	}
	assert.Positive(t, changedBottomRight)
	assert.Zero(t, changedTopLeft)
}

func TestWatermarkErrors(t *testing.T) {
	r := newRenderer(t)
	base := canvas(t, 50, 50, images.Black)

	_, err := r.Watermark(base, WatermarkOptions{Text: "  "})
	assert.ErrorIs(t, err, images.ErrMissingOverlayContent)

	_, err = r.Watermark(base, WatermarkOptions{Text: "x", Position: "nowhere"})
	assert.Error(t, err)

	_, err = r.Watermark(&images.RasterImage{}, WatermarkOptions{Text: "x"})
	assert.ErrorIs(t, err, images.ErrInvalidDimension)
}
