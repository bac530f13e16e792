package filters

import (
	"github.com/disintegration/imaging"

	"github.com/nvr-ai/go-imagekit/images"
)

// Pixelate replaces each blockSize x blockSize cell with its average color.
//
// The image is box-downsampled to ceil(w/b) x ceil(h/b) and scaled back up with
// nearest-neighbour sampling, so output dimensions match the input.
//
// Arguments:
//   - img: The source raster; it is not modified.
//   - blockSize: The cell size in pixels.
//
// Returns:
//   - *images.RasterImage: The pixelated copy.
//   - error: ErrInvalidDimension if blockSize < 1.
func Pixelate(img *images.RasterImage, blockSize int) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if blockSize < 1 {
		return nil, images.NewOpError("pixelate", "blockSize", blockSize, images.ErrInvalidDimension)
	}
	if blockSize == 1 {
		return img.Clone(), nil
	}

	w := (img.Width + blockSize - 1) / blockSize
	h := (img.Height + blockSize - 1) / blockSize

	small := imaging.Resize(img.NRGBA(), w, h, imaging.Box)
	return images.FromImage(imaging.Resize(small, img.Width, img.Height, imaging.NearestNeighbor)), nil
}
