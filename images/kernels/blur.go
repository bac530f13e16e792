// Package kernels implements the buffer-level primitives shared by the filter
// pipeline and background-removal post-processing: separable Gaussian and box
// blurs, alpha edge smoothing, and 3x3 convolution.
//
// All functions operate on *images.RasterImage and never retain the buffers
// they are given.
package kernels

import (
	"math"

	"github.com/nvr-ai/go-imagekit/images"
)

// Options configures a blur call.
type Options struct {
	// Radius of a box blur (window size = 2*Radius + 1). Must be >= 0.
	Radius int
	// Sigma of a Gaussian blur in pixels.
	Sigma float64
	// Workers enables row/column parallelism when > 1.
	Workers int
}

// GaussianBlur applies a separable Gaussian blur and returns a new raster.
//
// Both passes run on premultiplied color, so fully transparent pixels do not
// bleed their RGB into visible neighbors. Samples outside the image repeat
// the edge pixel.
//
// Arguments:
//   - src: The source raster; it is not modified.
//   - opt: Sigma and worker count.
//
// Returns:
//   - *images.RasterImage: The blurred copy.
//
// @example
// blurred := GaussianBlur(img, Options{Sigma: 2})
func GaussianBlur(src *images.RasterImage, opt Options) *images.RasterImage {
	// For very small sigma, return a copy of the original.
	if opt.Sigma < 0.1 {
		return src.Clone()
	}

	// We use 3*sigma to capture 99.7% of the distribution.
	radius := int(math.Ceil(opt.Sigma * 3.0))
	kernel := GenerateGaussianKernel(radius, opt.Sigma)

	pre := premultiply(src, opt.Workers)
	tmp := &images.RasterImage{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	dst := &images.RasterImage{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}

	convolveRows(pre, tmp, kernel, opt.Workers)
	convolveColumns(tmp, dst, kernel, opt.Workers)
	unpremultiply(dst, opt.Workers)
	return dst
}

// premultiply returns a copy of src with RGB scaled by alpha.
func premultiply(src *images.RasterImage, workers int) *images.RasterImage {
	dst := &images.RasterImage{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	stride := src.Width * 4
	images.Parallel(workers, src.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += 4 {
			a := uint32(src.Pix[i+3])
			dst.Pix[i+3] = uint8(a)
			if a == 0xff {
				copy(dst.Pix[i:i+3], src.Pix[i:i+3])
				continue
			}
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = uint8((uint32(src.Pix[i+c])*a + 127) / 255)
			}
		}
	})
	return dst
}

// unpremultiply divides RGB by alpha in place. Fully transparent pixels end
// up as zero.
func unpremultiply(img *images.RasterImage, workers int) {
	stride := img.Width * 4
	images.Parallel(workers, img.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += 4 {
			a := uint32(img.Pix[i+3])
			switch a {
			case 0xff:
				continue
			case 0:
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0, 0, 0
				continue
			}
			for c := 0; c < 3; c++ {
				v := (uint32(img.Pix[i+c])*255 + a/2) / a
				if v > 0xff {
					v = 0xff
				}
				img.Pix[i+c] = uint8(v)
			}
		}
	})
}

// GenerateGaussianKernel creates a 1D Gaussian kernel for separable filtering.
// The kernel is normalized to sum to 1.0.
//
// Arguments:
// - radius: The kernel radius (kernel size will be 2*radius + 1).
// - sigma: Standard deviation of the Gaussian.
//
// Returns:
// - A normalized 1D Gaussian kernel.
//
// @example
// kernel := GenerateGaussianKernel(3, 1.5)
func GenerateGaussianKernel(radius int, sigma float64) []float64 {
	size := 2*radius + 1
	kernel := make([]float64, size)
	denom := 2.0 * sigma * sigma

	sum := 0.0
	for i := 0; i < size; i++ {
		x := float64(i - radius)
		kernel[i] = math.Exp(-(x * x) / denom)
		sum += kernel[i]
	}

	// Normalizing keeps overall brightness unchanged.
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveRows applies a 1D kernel along each row.
func convolveRows(src, dst *images.RasterImage, kernel []float64, workers int) {
	w := src.Width
	radius := len(kernel) / 2

	images.Parallel(workers, src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * w * 4
			for x := 0; x < w; x++ {
				var r, g, b, a float64
				for i, weight := range kernel {
					off := row + clampCoord(x+i-radius, w)*4
					r += float64(src.Pix[off]) * weight
					g += float64(src.Pix[off+1]) * weight
					b += float64(src.Pix[off+2]) * weight
					a += float64(src.Pix[off+3]) * weight
				}
				o := row + x*4
				dst.Pix[o] = images.ClampByte(r)
				dst.Pix[o+1] = images.ClampByte(g)
				dst.Pix[o+2] = images.ClampByte(b)
				dst.Pix[o+3] = images.ClampByte(a)
			}
		}
	})
}

// convolveColumns applies a 1D kernel along each column.
func convolveColumns(src, dst *images.RasterImage, kernel []float64, workers int) {
	w, h := src.Width, src.Height
	stride := w * 4
	radius := len(kernel) / 2

	images.Parallel(workers, w, func(start, end int) {
		for x := start; x < end; x++ {
			col := x * 4
			for y := 0; y < h; y++ {
				var r, g, b, a float64
				for i, weight := range kernel {
					off := clampCoord(y+i-radius, h)*stride + col
					r += float64(src.Pix[off]) * weight
					g += float64(src.Pix[off+1]) * weight
					b += float64(src.Pix[off+2]) * weight
					a += float64(src.Pix[off+3]) * weight
				}
				o := y*stride + col
				dst.Pix[o] = images.ClampByte(r)
				dst.Pix[o+1] = images.ClampByte(g)
				dst.Pix[o+2] = images.ClampByte(b)
				dst.Pix[o+3] = images.ClampByte(a)
			}
		}
	})
}

// BoxBlur applies a separable box blur and returns a new raster.
//
// Each pass uses a sliding window, so the cost per pixel is independent of
// the radius. Like GaussianBlur it works on premultiplied color. Radius <= 0
// returns a copy.
func BoxBlur(src *images.RasterImage, opt Options) *images.RasterImage {
	if opt.Radius <= 0 {
		return src.Clone()
	}

	pre := premultiply(src, opt.Workers)
	tmp := &images.RasterImage{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	dst := &images.RasterImage{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}

	boxPass(pre, tmp, opt.Radius, opt.Workers, true)
	boxPass(tmp, dst, opt.Radius, opt.Workers, false)
	unpremultiply(dst, opt.Workers)
	return dst
}

// boxPass runs one sliding-window pass along rows (horizontal) or columns.
// The window sum is updated by removing the sample leaving on one side and
// adding the sample entering on the other.
func boxPass(src, dst *images.RasterImage, r int, workers int, horizontal bool) {
	w, h := src.Width, src.Height
	stride := w * 4

	lines, n := h, w
	offset := func(line, i int) int { return line*stride + i*4 }
	if !horizontal {
		lines, n = w, h
		offset = func(line, i int) int { return i*stride + line*4 }
	}

	window := uint32(2*r + 1)
	images.Parallel(workers, lines, func(start, end int) {
		for line := start; line < end; line++ {
			var sum [4]uint32
			for d := -r; d <= r; d++ {
				off := offset(line, clampCoord(d, n))
				for c := 0; c < 4; c++ {
					sum[c] += uint32(src.Pix[off+c])
				}
			}

			for i := 0; i < n; i++ {
				o := offset(line, i)
				for c := 0; c < 4; c++ {
					dst.Pix[o+c] = uint8((sum[c] + window/2) / window)
				}

				left := offset(line, clampCoord(i-r, n))
				right := offset(line, clampCoord(i+r+1, n))
				for c := 0; c < 4; c++ {
					sum[c] = sum[c] + uint32(src.Pix[right+c]) - uint32(src.Pix[left+c])
				}
			}
		}
	})
}

// clampCoord maps i into [0, n) by repeating the edge sample.
func clampCoord(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
