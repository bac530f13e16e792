package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaster(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"valid", 4, 3, false},
		{"single pixel", 1, 1, false},
		{"zero width", 0, 3, true},
		{"negative height", 3, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRaster(tt.w, tt.h)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDimension))
				return
			}
			require.NoError(t, err)
			assert.Len(t, r.Pix, tt.w*tt.h*4)
			assert.NoError(t, r.Validate())
		})
	}
}

func TestFromImage(t *testing.T) {
	t.Run("nrgba with non-zero origin", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
		src.SetNRGBA(10, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
		src.SetNRGBA(12, 21, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

		r := FromImage(src)
		assert.Equal(t, 3, r.Width)
		assert.Equal(t, 2, r.Height)
		assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, r.At(0, 0))
		assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 255}, r.At(2, 1))
	})

	t.Run("gray converts to opaque rgba", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 2, 2))
		src.SetGray(1, 1, color.Gray{Y: 200})

		r := FromImage(src)
		assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 255}, r.At(1, 1))
		assert.False(t, r.HasTransparency())
	})
}

func TestRasterNRGBAView(t *testing.T) {
	r, err := NewRaster(2, 2)
	require.NoError(t, err)

	view := r.NRGBA()
	view.SetNRGBA(1, 0, color.NRGBA{R: 50, A: 255})
	assert.Equal(t, color.NRGBA{R: 50, A: 255}, r.At(1, 0))
	assert.Equal(t, r.Bounds(), view.Bounds())
}

func TestRasterClone(t *testing.T) {
	r, err := NewFilledRaster(2, 2, White)
	require.NoError(t, err)

	c := r.Clone()
	c.Set(0, 0, Black)
	assert.Equal(t, White, r.At(0, 0))
	assert.Equal(t, Black, c.At(0, 0))
}

func TestRasterValidate(t *testing.T) {
	var nilRaster *RasterImage
	assert.Error(t, nilRaster.Validate())

	bad := &RasterImage{Width: 2, Height: 2, Pix: make([]uint8, 3)}
	err := bad.Validate()
	require.Error(t, err)

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "validate", opErr.Op)
	assert.Equal(t, "pixels", opErr.Param)
}

func TestFlattenOnto(t *testing.T) {
	r, err := NewRaster(3, 1)
	require.NoError(t, err)
	r.Set(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})
	r.Set(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	r.Set(2, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 128})
	require.True(t, r.HasTransparency())

	r.FlattenOnto(White)
	assert.Equal(t, White, r.At(0, 0))
	assert.Equal(t, Black, r.At(1, 0))
	assert.Equal(t, color.NRGBA{R: 127, G: 127, B: 127, A: 255}, r.At(2, 0))
	assert.False(t, r.HasTransparency())
}
