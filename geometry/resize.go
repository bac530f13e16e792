package geometry

import (
	"math"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-imagekit/images"
)

// Filter selects the resampling kernel used by Resize.
type Filter string

// Supported resampling filters. Nearest-neighbour is deliberately absent:
// downscaling with it aliases badly.
const (
	FilterBicubic  Filter = "bicubic"
	FilterBilinear Filter = "bilinear"
	FilterMitchell Filter = "mitchell"
	FilterLanczos3 Filter = "lanczos3"
)

// ParseFilter normalizes a filter name. The empty string selects bicubic and
// "lanczos" is accepted for lanczos3.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FilterBicubic, nil
	case "lanczos":
		return FilterLanczos3, nil
	case FilterBicubic, FilterBilinear, FilterMitchell, FilterLanczos3:
		return f, nil
	default:
		return "", errors.Errorf("unsupported resampling filter %q", s)
	}
}

func (f Filter) interpolation() resize.InterpolationFunction {
	switch f {
	case FilterBilinear:
		return resize.Bilinear
	case FilterMitchell:
		return resize.MitchellNetravali
	case FilterLanczos3:
		return resize.Lanczos3
	default:
		return resize.Bicubic
	}
}

// Resize resamples the raster to a target size.
//
// A zero Width or Height means "not given". With KeepAspect, or when only one
// dimension is given, the other is derived from the source aspect ratio; if
// both are given with KeepAspect, Width wins.
type Resize struct {
	// Width is the target width in pixels, 0 if unset.
	Width int `json:"width,omitempty" yaml:"width"`
	// Height is the target height in pixels, 0 if unset.
	Height int `json:"height,omitempty" yaml:"height"`
	// KeepAspect derives the missing dimension from the source ratio.
	KeepAspect bool `json:"keepAspect" yaml:"keepAspect"`
	// Filter is the resampling kernel; empty means bicubic.
	Filter Filter `json:"filter,omitempty" yaml:"filter"`
}

// Name implements Op.
func (r Resize) Name() string { return "resize" }

// Dimensions resolves the output size for a srcW x srcH source.
//
// Arguments:
//   - srcW: The source width.
//   - srcH: The source height.
//
// Returns:
//   - int: The output width.
//   - int: The output height.
//   - error: ErrInvalidDimension when a given dimension is below 1 or none is given.
//
// @example
// w, h, _ := Resize{Width: 400, KeepAspect: true}.Dimensions(800, 600) // 400, 300
func (r Resize) Dimensions(srcW, srcH int) (int, int, error) {
	if r.Width < 0 {
		return 0, 0, images.NewOpError(r.Name(), "width", r.Width, images.ErrInvalidDimension)
	}
	if r.Height < 0 {
		return 0, 0, images.NewOpError(r.Name(), "height", r.Height, images.ErrInvalidDimension)
	}
	if srcW < 1 || srcH < 1 {
		return 0, 0, images.NewOpError(r.Name(), "source", srcW*srcH, images.ErrInvalidDimension)
	}

	switch {
	case r.Width == 0 && r.Height == 0:
		return 0, 0, images.NewOpError(r.Name(), "width", 0, images.ErrInvalidDimension)
	case r.Width > 0 && r.Height > 0 && !r.KeepAspect:
		return r.Width, r.Height, nil
	case r.Width > 0:
		return r.Width, scaled(r.Width, srcH, srcW), nil
	default:
		return scaled(r.Height, srcW, srcH), r.Height, nil
	}
}

// scaled returns round(given * other / this), never below 1.
func scaled(given, other, this int) int {
	v := int(math.Round(float64(given) * float64(other) / float64(this)))
	if v < 1 {
		return 1
	}
	return v
}

// Apply implements Op.
func (r Resize) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	if _, err := ParseFilter(string(r.Filter)); err != nil {
		return nil, images.NewOpError(r.Name(), "filter", r.Filter, err)
	}
	w, h, err := r.Dimensions(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	if w == img.Width && h == img.Height {
		return img.Clone(), nil
	}

	out := resize.Resize(uint(w), uint(h), img.NRGBA(), r.Filter.interpolation())
	return images.FromImage(out), nil
}
