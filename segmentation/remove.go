package segmentation

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/images/kernels"
)

// Options controls background removal post-processing.
type Options struct {
	// SmoothRadius feathers the cut-out edge; 0 disables smoothing.
	SmoothRadius int `json:"smoothRadius" yaml:"smoothRadius" mapstructure:"smooth_radius"`
	// Background flattens the result onto a solid color; nil keeps transparency.
	Background *color.NRGBA `json:"background,omitempty" yaml:"background" mapstructure:"-"`
}

// ApplyMask multiplies each pixel's alpha by the mask probability in place.
func ApplyMask(img *images.RasterImage, m *Mask) error {
	if m == nil || m.Width != img.Width || m.Height != img.Height || len(m.Values) != m.Width*m.Height {
		var got image.Point
		if m != nil {
			got = image.Pt(m.Width, m.Height)
		}
		return images.NewOpError("remove-background", "mask", got, images.ErrSegmentationFailure)
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := img.Offset(x, y) + 3
			img.Pix[i] = uint8((uint32(img.Pix[i])*uint32(m.Alpha(x, y)) + 127) / 255)
		}
	}
	return nil
}

// RemoveBackground cuts the foreground out of img.
//
// The segmenter's mask becomes the alpha channel. Partially transparent edge
// pixels are then optionally feathered, and the result optionally flattened.
//
// Arguments:
//   - ctx: Cancels the model call.
//   - seg: The segmentation model adapter.
//   - img: The source raster; it is not modified.
//   - opts: Edge smoothing and background.
//
// Returns:
//   - *images.RasterImage: The cut-out image.
//   - error: ErrSegmentationFailure when the model fails.
func RemoveBackground(ctx context.Context, seg Segmenter, img *images.RasterImage, opts Options) (*images.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if opts.SmoothRadius < 0 {
		return nil, images.NewOpError("remove-background", "smoothRadius", opts.SmoothRadius, images.ErrInvalidDimension)
	}

	m, err := seg.Segment(ctx, img)
	if err != nil {
		if errors.Is(err, images.ErrSegmentationFailure) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, images.WrapOp("remove-background", "model", nil, images.ErrSegmentationFailure, err)
	}

	out := img.Clone()
	if err := ApplyMask(out, m); err != nil {
		return nil, err
	}
	if opts.SmoothRadius > 0 {
		kernels.SmoothEdges(out, opts.SmoothRadius)
	}
	if opts.Background != nil {
		out.FlattenOnto(*opts.Background)
	}
	return out, nil
}
