// Package segmentation - Background removal on top of an external foreground
// segmentation model.
//
// The models themselves are opaque: adapters feed them a normalized CHW tensor
// and read back a single-channel saliency map, which is min-max normalized and
// upscaled to the source size before being applied as alpha.
package segmentation

import (
	"context"
	"image"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-imagekit/images"
)

// DefaultInputSize is the square input edge used by U²-Net style models.
const DefaultInputSize = 320

// ImageNet channel statistics used to normalize model input.
var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Segmenter produces a foreground probability mask for an image.
type Segmenter interface {
	// Segment returns a mask with the same dimensions as img.
	Segment(ctx context.Context, img *images.RasterImage) (*Mask, error)
}

// Mask is a per-pixel foreground probability in [0, 1], row-major.
type Mask struct {
	Width  int
	Height int
	Values []float32
}

// At returns the probability at (x, y).
func (m *Mask) At(x, y int) float32 {
	return m.Values[y*m.Width+x]
}

// Alpha returns the probability at (x, y) scaled to 0..255.
func (m *Mask) Alpha(x, y int) uint8 {
	return uint8(clampUnit(m.At(x, y))*255 + 0.5)
}

// Preprocess resizes img to size x size and lays it out as a CHW float32
// tensor normalized with the ImageNet mean and standard deviation.
//
// Arguments:
//   - img: The source raster.
//   - size: The square model input edge.
//
// Returns:
//   - []float32: 3*size*size values, channel planes R, G, B.
func Preprocess(img *images.RasterImage, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img.NRGBA(), resize.Bilinear)
	src := images.FromImage(resized)

	plane := size * size
	out := make([]float32, 3*plane)
	for i := 0; i < plane; i++ {
		for c := 0; c < 3; c++ {
			v := float32(src.Pix[i*4+c]) / 255
			out[c*plane+i] = (v - imageNetMean[c]) / imageNetStd[c]
		}
	}
	return out
}

// NormalizeMask rescales values to [0, 1] in place using their min and max.
// A flat map is clamped instead since it carries no contrast to stretch.
func NormalizeMask(values []float32) {
	if len(values) == 0 {
		return
	}
	lo, hi := math32.Inf(1), math32.Inf(-1)
	for _, v := range values {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	span := hi - lo
	if span < 1e-6 {
		for i, v := range values {
			values[i] = clampUnit(v)
		}
		return
	}
	for i, v := range values {
		values[i] = (v - lo) / span
	}
}

// UpscaleMask resizes a size x size probability map to width x height.
func UpscaleMask(values []float32, size, width, height int) *Mask {
	gray := image.NewGray(image.Rect(0, 0, size, size))
	for i, v := range values[:size*size] {
		gray.Pix[i] = uint8(clampUnit(v)*255 + 0.5)
	}

	scaled := resize.Resize(uint(width), uint(height), gray, resize.Bilinear)
	m := &Mask{Width: width, Height: height, Values: make([]float32, width*height)}
	b := scaled.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := scaled.At(b.Min.X+x, b.Min.Y+y).RGBA()
			m.Values[y*width+x] = float32(r>>8) / 255
		}
	}
	return m
}

// postprocess turns raw model output into a mask at the source size.
func postprocess(raw []float32, size, width, height int) *Mask {
	values := make([]float32, size*size)
	copy(values, raw)
	NormalizeMask(values)
	return UpscaleMask(values, size, width, height)
}

func clampUnit(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
