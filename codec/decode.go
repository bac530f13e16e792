// Package codec turns raster buffers into encoded bytes and back, and runs the
// size-constrained compression loop.
package codec

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/nvr-ai/go-imagekit/images"
)

// Decode reads PNG, JPEG, WebP, GIF or BMP bytes into a raster. JPEG EXIF
// orientation is applied so the raster is upright.
//
// Arguments:
//   - data: The encoded image.
//
// Returns:
//   - *images.RasterImage: The decoded pixels.
//   - images.ImageFormat: The detected source format.
//   - error: ErrDecodeFailure if the bytes cannot be read.
func Decode(data []byte) (*images.RasterImage, images.ImageFormat, error) {
	if len(data) == 0 {
		return nil, 0, images.NewOpError("decode", "data", 0, images.ErrDecodeFailure)
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// The webp package registers itself, but fall back to its decoder for
		// container variants the sniffing pattern does not match.
		img, werr := webp.Decode(bytes.NewReader(data))
		if werr != nil {
			return nil, 0, images.WrapOp("decode", "data", len(data), images.ErrDecodeFailure, err)
		}
		return images.FromImage(img), images.FormatWebP, nil
	}

	format, err := images.ParseFormat(name)
	if err != nil {
		return nil, 0, images.WrapOp("decode", "format", name, images.ErrDecodeFailure, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, images.WrapOp("decode", "data", len(data), images.ErrDecodeFailure, err)
	}
	return images.FromImage(img), format, nil
}
