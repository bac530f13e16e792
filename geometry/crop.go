package geometry

import (
	"math"

	"github.com/nvr-ai/go-imagekit/images"
)

// Crop cuts a rectangle out of the raster. The rectangle is clamped into the
// image first, so the result is never larger than the source.
type Crop struct {
	Rect images.PixelCrop `json:"rect" yaml:"rect"`
}

// Name implements Op.
func (c Crop) Name() string { return "crop" }

// Apply implements Op.
func (c Crop) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	rect, err := c.Rect.ClampTo(img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	out, err := images.NewRaster(rect.Width, rect.Height)
	if err != nil {
		return nil, err
	}

	rowBytes := rect.Width * 4
	for y := 0; y < rect.Height; y++ {
		src := img.Offset(rect.X, rect.Y+y)
		copy(out.Pix[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return out, nil
}

// CropToAspect returns the largest crop of the given aspect ratio
// (width / height) centered in a width x height image.
//
// Arguments:
//   - width: The image width.
//   - height: The image height.
//   - ratio: The target width / height ratio.
//
// Returns:
//   - images.PixelCrop: The centered crop.
//   - error: ErrInvalidDimension for a non-positive ratio or image size.
//
// @example
// crop, _ := CropToAspect(1920, 1080, 1) // {X: 420, Y: 0, Width: 1080, Height: 1080}
func CropToAspect(width, height int, ratio float64) (images.PixelCrop, error) {
	if width < 1 || height < 1 {
		return images.PixelCrop{}, images.NewOpError("crop", "source", width*height, images.ErrInvalidDimension)
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return images.PixelCrop{}, images.NewOpError("crop", "ratio", ratio, images.ErrInvalidDimension)
	}

	w, h := width, height
	if float64(width)/float64(height) > ratio {
		w = int(math.Round(float64(height) * ratio))
	} else {
		h = int(math.Round(float64(width) / ratio))
	}
	w = max(1, min(w, width))
	h = max(1, min(h, height))

	return images.PixelCrop{
		X:      (width - w) / 2,
		Y:      (height - h) / 2,
		Width:  w,
		Height: h,
	}, nil
}
