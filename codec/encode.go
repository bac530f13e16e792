package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-imagekit/images"
)

// EncodeRequest selects the output encoding.
type EncodeRequest struct {
	Format images.ImageFormat `json:"format" yaml:"format"`
	// Quality in (0, 1]; 0 picks 0.92. Ignored for lossless formats.
	Quality float64 `json:"quality" yaml:"quality"`
	// Background is painted beneath transparent pixels for formats without
	// alpha. Nil means white.
	Background *color.NRGBA `json:"background,omitempty" yaml:"background"`
}

// EncodedImage is the final product of a pipeline run.
type EncodedImage struct {
	Bytes    []byte             `json:"-"`
	ByteSize int                `json:"byteSize"`
	Format   images.ImageFormat `json:"format"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
}

// QualityPercent maps a [0, 1] quality to the encoders' [1, 100] scale.
func QualityPercent(q float64) int {
	return int(images.Clamp(math.Round(q*100), 1, 100))
}

// Encode writes img in the requested format.
//
// Arguments:
//   - img: The raster to encode; it is not modified.
//   - req: The target format, quality and background.
//
// Returns:
//   - *EncodedImage: The encoded bytes and metadata.
//   - error: ErrEncodeFailure if the backend rejects the buffer.
//
// @example
// enc, err := codec.Encode(img, codec.EncodeRequest{Format: images.FormatJPEG, Quality: 0.8})
func Encode(img *images.RasterImage, req EncodeRequest) (*EncodedImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if !req.Format.Valid() {
		return nil, images.NewOpError("encode", "format", req.Format, images.ErrEncodeFailure)
	}

	if req.Quality <= 0 {
		req.Quality = DefaultConvertQuality
	}

	src := img
	if !req.Format.SupportsAlpha() && img.HasTransparency() {
		bg := images.White
		if req.Background != nil {
			bg = *req.Background
		}
		src = img.Clone()
		src.FlattenOnto(bg)
	}

	var buf bytes.Buffer
	if err := encodeTo(&buf, src, req); err != nil {
		return nil, images.WrapOp("encode", "format", req.Format, images.ErrEncodeFailure, err)
	}

	return &EncodedImage{
		Bytes:    buf.Bytes(),
		ByteSize: buf.Len(),
		Format:   req.Format,
		Width:    img.Width,
		Height:   img.Height,
	}, nil
}

func encodeTo(w io.Writer, img *images.RasterImage, req EncodeRequest) error {
	switch req.Format {
	case images.FormatJPEG:
		return imaging.Encode(w, img.NRGBA(), imaging.JPEG, imaging.JPEGQuality(QualityPercent(req.Quality)))
	case images.FormatWebP:
		return webp.Encode(w, img.NRGBA(), &webp.Options{Quality: float32(QualityPercent(req.Quality))})
	case images.FormatPNG:
		return imaging.Encode(w, img.NRGBA(), imaging.PNG)
	case images.FormatGIF:
		return imaging.Encode(w, img.NRGBA(), imaging.GIF)
	case images.FormatBMP:
		return imaging.Encode(w, img.NRGBA(), imaging.BMP)
	case images.FormatSVG:
		return encodeSVG(w, img)
	default:
		return errors.Errorf("no encoder for %v", req.Format)
	}
}

// encodeSVG embeds a PNG rendition as a data URI so the pixels stay exact.
func encodeSVG(w io.Writer, img *images.RasterImage) error {
	var png bytes.Buffer
	if err := imaging.Encode(&png, img.NRGBA(), imaging.PNG); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<image width="%d" height="%d" xlink:href="data:image/png;base64,%s"/></svg>`,
		img.Width, img.Height, img.Width, img.Height, img.Width, img.Height,
		base64.StdEncoding.EncodeToString(png.Bytes()))
	return err
}
