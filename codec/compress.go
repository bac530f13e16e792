package codec

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/nvr-ai/go-imagekit/images"
)

// Compression loop bounds.
const (
	DefaultStartQuality = 0.8
	MinQuality          = 0.1
	QualityStep         = 0.1
	// MaxIterations caps the loop; a start of 1.0 walks exactly ten steps.
	MaxIterations = 10
)

const bytesPerMB = 1024 * 1024

// CompressionOptions describes a size-constrained re-encode.
type CompressionOptions struct {
	// MaxSizeMB is the byte budget in MiB; 0 disables the budget.
	MaxSizeMB float64 `json:"maxSizeMB" yaml:"maxSizeMB" mapstructure:"max_size_mb"`
	// MaxWidthOrHeight bounds the longer side before encoding; 0 keeps the size.
	MaxWidthOrHeight int `json:"maxWidthOrHeight,omitempty" yaml:"maxWidthOrHeight" mapstructure:"max_width_or_height"`
	// Quality is the starting quality; 0 picks 0.8.
	Quality float64 `json:"quality,omitempty" yaml:"quality" mapstructure:"quality"`
	// Format defaults to JPEG.
	Format images.ImageFormat `json:"format,omitempty" yaml:"format" mapstructure:"format"`
	// Background is used when the format has no alpha.
	Background *color.NRGBA `json:"background,omitempty" yaml:"background" mapstructure:"-"`
}

// BudgetBytes returns the byte budget, or 0 when there is none.
func (o CompressionOptions) BudgetBytes() int {
	if o.MaxSizeMB <= 0 {
		return 0
	}
	return int(o.MaxSizeMB * bytesPerMB)
}

// CompressionResult reports what the loop achieved.
type CompressionResult struct {
	Encoded *EncodedImage
	// Quality is the quality of Encoded.
	Quality float64
	// Iterations is the number of full encodes performed.
	Iterations int
	// BudgetMet is false when the floor was reached without fitting the budget.
	BudgetMet bool
}

// Qualities returns the descending quality sequence tried from start:
// start, start-0.1, ... down to the 0.1 floor, at most MaxIterations values.
func Qualities(start float64) []float64 {
	if start <= 0 {
		start = DefaultStartQuality
	}
	start = images.Clamp(start, MinQuality, 1)

	var qs []float64
	for i := 0; i < MaxIterations; i++ {
		q := math.Round((start-float64(i)*QualityStep)*1000) / 1000
		if q < MinQuality {
			break
		}
		qs = append(qs, q)
	}
	if last := qs[len(qs)-1]; last > MinQuality && len(qs) < MaxIterations {
		qs = append(qs, MinQuality)
	}
	return qs
}

// Compress fits img into MaxWidthOrHeight and then re-encodes at decreasing
// quality until the result fits the byte budget. Reaching the floor without
// fitting is not an error: the smallest-quality encode is returned with
// BudgetMet false. Lossless formats are encoded once.
//
// Arguments:
//   - img: The raster to compress; it is not modified.
//   - opts: The budget, bounds and format.
//
// Returns:
//   - *CompressionResult: The final encode and loop statistics.
//   - error: An encoder failure, never an unmet budget.
func Compress(img *images.RasterImage, opts CompressionOptions) (*CompressionResult, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxSizeMB < 0 {
		return nil, images.NewOpError("compress", "maxSizeMB", opts.MaxSizeMB, images.ErrInvalidDimension)
	}
	if opts.MaxWidthOrHeight < 0 {
		return nil, images.NewOpError("compress", "maxWidthOrHeight", opts.MaxWidthOrHeight, images.ErrInvalidDimension)
	}
	if opts.Format == 0 {
		opts.Format = images.FormatJPEG
	}

	src := img
	if m := opts.MaxWidthOrHeight; m > 0 && (img.Width > m || img.Height > m) {
		src = images.FromImage(imaging.Fit(img.NRGBA(), m, m, imaging.Lanczos))
	}

	budget := opts.BudgetBytes()
	fits := func(e *EncodedImage) bool { return budget == 0 || e.ByteSize <= budget }

	if !opts.Format.Lossy() {
		enc, err := Encode(src, EncodeRequest{Format: opts.Format, Quality: 1, Background: opts.Background})
		if err != nil {
			return nil, err
		}
		return &CompressionResult{Encoded: enc, Quality: 1, Iterations: 1, BudgetMet: fits(enc)}, nil
	}

	res := &CompressionResult{}
	for _, q := range Qualities(opts.Quality) {
		enc, err := Encode(src, EncodeRequest{Format: opts.Format, Quality: q, Background: opts.Background})
		if err != nil {
			return nil, err
		}
		res.Encoded, res.Quality = enc, q
		res.Iterations++
		if fits(enc) {
			res.BudgetMet = true
			break
		}
	}
	return res, nil
}
