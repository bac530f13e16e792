// Package images - Raster buffer definition shared by every transform stage.
package images

import (
	"image"
	"image/color"
	"image/draw"
)

// RasterImage is an in-memory RGBA pixel grid.
//
// Pixels are stored row-major, four bytes per pixel, non-premultiplied. A
// RasterImage is owned by exactly one operation at a time; stages either mutate
// it in place or return a fresh buffer.
type RasterImage struct {
	// The width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// The pixel data, len(Pix) == Width*Height*4.
	Pix []uint8 `json:"-" yaml:"-"`
}

// NewRaster allocates a zeroed (fully transparent) raster.
//
// Arguments:
//   - width: The width of the raster in pixels.
//   - height: The height of the raster in pixels.
//
// Returns:
//   - *RasterImage: The allocated raster.
//   - error: ErrInvalidDimension if either dimension is below 1.
func NewRaster(width, height int) (*RasterImage, error) {
	if width < 1 || height < 1 {
		return nil, NewOpError("new", "dimensions", image.Pt(width, height), ErrInvalidDimension)
	}
	return &RasterImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// NewFilledRaster allocates a raster and paints every pixel with c.
func NewFilledRaster(width, height int, c color.NRGBA) (*RasterImage, error) {
	r, err := NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	r.Fill(c)
	return r, nil
}

// FromImage copies any image.Image into a new raster anchored at (0, 0).
//
// Arguments:
//   - img: The decoded source image.
//
// Returns:
//   - *RasterImage: A raster holding non-premultiplied copies of the source pixels.
func FromImage(img image.Image) *RasterImage {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Fast path: NRGBA sources are copied row by row without color conversion.
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[srcOff:srcOff+b.Dx()*4])
		}
	} else {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}

	return &RasterImage{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// NRGBA returns an *image.NRGBA view that shares the pixel buffer.
// Writes through the view are visible in the raster and vice versa.
func (r *RasterImage) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Bounds returns the raster rectangle anchored at the origin.
func (r *RasterImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// Clone returns a deep copy of the raster.
func (r *RasterImage) Clone() *RasterImage {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &RasterImage{Width: r.Width, Height: r.Height, Pix: pix}
}

// Offset returns the index of the first byte of pixel (x, y).
func (r *RasterImage) Offset(x, y int) int {
	return (y*r.Width + x) * 4
}

// At returns the pixel at (x, y).
func (r *RasterImage) At(x, y int) color.NRGBA {
	i := r.Offset(x, y)
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Set writes the pixel at (x, y).
func (r *RasterImage) Set(x, y int, c color.NRGBA) {
	i := r.Offset(x, y)
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
	r.Pix[i+3] = c.A
}

// Fill paints every pixel with c.
func (r *RasterImage) Fill(c color.NRGBA) {
	for i := 0; i < len(r.Pix); i += 4 {
		r.Pix[i] = c.R
		r.Pix[i+1] = c.G
		r.Pix[i+2] = c.B
		r.Pix[i+3] = c.A
	}
}

// HasTransparency reports whether any pixel has alpha below 255.
func (r *RasterImage) HasTransparency() bool {
	for i := 3; i < len(r.Pix); i += 4 {
		if r.Pix[i] != 0xff {
			return true
		}
	}
	return false
}

// Validate checks that the buffer length matches the declared dimensions.
func (r *RasterImage) Validate() error {
	if r == nil {
		return NewOpError("validate", "image", nil, ErrInvalidDimension)
	}
	if r.Width < 1 || r.Height < 1 {
		return NewOpError("validate", "dimensions", image.Pt(r.Width, r.Height), ErrInvalidDimension)
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return NewOpError("validate", "pixels", len(r.Pix), ErrInvalidDimension)
	}
	return nil
}

// FlattenOnto composites the raster over an opaque background color in place.
// Every resulting pixel is fully opaque.
//
// Arguments:
//   - bg: The background color; its alpha is ignored.
func (r *RasterImage) FlattenOnto(bg color.NRGBA) {
	for i := 0; i < len(r.Pix); i += 4 {
		a := uint32(r.Pix[i+3])
		if a == 0xff {
			continue
		}
		inv := 0xff - a
		r.Pix[i] = uint8((uint32(r.Pix[i])*a + uint32(bg.R)*inv + 127) / 0xff)
		r.Pix[i+1] = uint8((uint32(r.Pix[i+1])*a + uint32(bg.G)*inv + 127) / 0xff)
		r.Pix[i+2] = uint8((uint32(r.Pix[i+2])*a + uint32(bg.B)*inv + 127) / 0xff)
		r.Pix[i+3] = 0xff
	}
}
