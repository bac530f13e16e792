// Package geometry implements the geometric transform stage: resize, crop,
// rotate and flip over an *images.RasterImage.
//
// Every operation satisfies Op so a caller can build an ordered list of
// transforms from user input and apply it in one call:
//
//	out, err := geometry.Apply(img,
//	    geometry.Resize{Width: 400, KeepAspect: true},
//	    geometry.Rotate{Angle: 90},
//	)
package geometry

import (
	"image"

	"github.com/nvr-ai/go-imagekit/images"
)

// Op is one geometric transform.
//
// Apply may mutate its input in place (flips) or return a freshly allocated
// raster (resize, crop, rotate). Callers must use the returned raster and treat
// the input as consumed.
type Op interface {
	// Name is the short operation name used in errors, logs and output file names.
	Name() string
	// Apply runs the transform.
	Apply(img *images.RasterImage) (*images.RasterImage, error)
}

// Apply runs ops in order, feeding each output into the next.
//
// Arguments:
//   - img: The source raster.
//   - ops: The transforms to apply.
//
// Returns:
//   - *images.RasterImage: The transformed raster.
//   - error: The first error returned by an operation.
func Apply(img *images.RasterImage, ops ...Op) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	var err error
	for _, op := range ops {
		if img, err = op.Apply(img); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// fromNRGBA adopts an origin-anchored, tightly packed *image.NRGBA without
// copying, falling back to a copy otherwise.
func fromNRGBA(img *image.NRGBA) *images.RasterImage {
	b := img.Bounds()
	if b.Min == (image.Point{}) && img.Stride == b.Dx()*4 && len(img.Pix) == b.Dx()*b.Dy()*4 {
		return &images.RasterImage{Width: b.Dx(), Height: b.Dy(), Pix: img.Pix}
	}
	return images.FromImage(img)
}
