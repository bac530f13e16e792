package codec

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-imagekit/images"
)

// DefaultConvertQuality is used when a conversion names no quality.
const DefaultConvertQuality = 0.92

// ConversionOptions describes a format conversion.
type ConversionOptions struct {
	Format images.ImageFormat `json:"format" yaml:"format"`
	// Quality in (0, 1]; 0 picks 0.92.
	Quality float64 `json:"quality,omitempty" yaml:"quality"`
	// Background is painted beneath transparent pixels for formats without alpha.
	Background *color.NRGBA `json:"backgroundColor,omitempty" yaml:"backgroundColor"`
}

// Convert re-encodes img into opts.Format.
func Convert(img *images.RasterImage, opts ConversionOptions) (*EncodedImage, error) {
	if !opts.Format.Valid() {
		return nil, images.NewOpError("convert", "format", opts.Format, images.ErrEncodeFailure)
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultConvertQuality
	}
	return Encode(img, EncodeRequest{Format: opts.Format, Quality: opts.Quality, Background: opts.Background})
}

// OutputName builds "<stem>_<operation>.<ext>" from the source file name.
//
// @example
// OutputName("/tmp/holiday.jpeg", "resized", images.FormatWebP) // "holiday_resized.webp"
func OutputName(original, operation string, format images.ImageFormat) string {
	base := filepath.Base(original)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "image"
	}
	if operation == "" {
		return fmt.Sprintf("%s.%s", stem, format.Extension())
	}
	return fmt.Sprintf("%s_%s.%s", stem, operation, format.Extension())
}
