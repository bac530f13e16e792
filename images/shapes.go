// Package images - Crop rectangles and their clamping rules.
package images

import "image"

// PixelCrop is a crop rectangle in pixel units.
type PixelCrop struct {
	// X is the left edge.
	X int `json:"x" yaml:"x"`
	// Y is the top edge.
	Y int `json:"y" yaml:"y"`
	// Width is the crop width.
	Width int `json:"width" yaml:"width"`
	// Height is the crop height.
	Height int `json:"height" yaml:"height"`
}

// Rectangle converts the crop to an image.Rectangle (Max exclusive).
func (c PixelCrop) Rectangle() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// ClampTo clamps the crop into a width x height image.
//
// The rectangle is intersected with the image: a negative origin moves to 0
// and the width or height shrinks by the same amount, then the far edges are
// pulled inside the image. The result is never larger than the source.
//
// Arguments:
//   - width: The image width.
//   - height: The image height.
//
// Returns:
//   - PixelCrop: The clamped crop.
//   - error: ErrInvalidCropArea if fewer than one pixel remains on either axis.
func (c PixelCrop) ClampTo(width, height int) (PixelCrop, error) {
	out := c
	if out.X < 0 {
		out.Width += out.X
		out.X = 0
	}
	if out.Y < 0 {
		out.Height += out.Y
		out.Y = 0
	}
	if out.X+out.Width > width {
		out.Width = width - out.X
	}
	if out.Y+out.Height > height {
		out.Height = height - out.Y
	}
	if out.Width < 1 || out.Height < 1 {
		return PixelCrop{}, NewOpError("crop", "rect", c, ErrInvalidCropArea)
	}
	return out, nil
}

// Area returns the number of pixels covered by the crop.
func (c PixelCrop) Area() int {
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}
	return c.Width * c.Height
}
