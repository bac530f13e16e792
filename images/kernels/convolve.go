package kernels

import "github.com/nvr-ai/go-imagekit/images"

// Kernel3x3 is a 3x3 convolution matrix indexed [row][column].
type Kernel3x3 [3][3]float64

// SharpenKernel returns the cross-shaped sharpen kernel for amount in [0, 100].
//
//	[ 0, -k,    0]
//	[-k, 1+4k, -k]
//	[ 0, -k,    0]
//
// with k = amount / 50.
func SharpenKernel(amount float64) Kernel3x3 {
	k := amount / 50
	return Kernel3x3{
		{0, -k, 0},
		{-k, 1 + 4*k, -k},
		{0, -k, 0},
	}
}

// Convolve3x3 applies k to the RGB channels and returns a new raster.
//
// Border pixels only accumulate in-bounds neighbors. The weighted sum is not
// renormalized for the missing taps, so edges come out slightly brighter for
// kernels whose off-center weights are negative. Alpha passes through.
//
// Arguments:
//   - src: The source raster; it is not modified.
//   - k: The kernel.
//   - workers: Row parallelism, 1 for serial.
//
// Returns:
//   - *images.RasterImage: The convolved copy.
func Convolve3x3(src *images.RasterImage, k Kernel3x3, workers int) *images.RasterImage {
	w, h := src.Width, src.Height
	dst := &images.RasterImage{Width: w, Height: h, Pix: make([]uint8, len(src.Pix))}

	images.Parallel(workers, h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var r, g, b float64
				for ky := -1; ky <= 1; ky++ {
					sy := y + ky
					if sy < 0 || sy >= h {
						continue
					}
					for kx := -1; kx <= 1; kx++ {
						sx := x + kx
						if sx < 0 || sx >= w {
							continue
						}
						weight := k[ky+1][kx+1]
						if weight == 0 {
							continue
						}
						off := (sy*w + sx) * 4
						r += float64(src.Pix[off]) * weight
						g += float64(src.Pix[off+1]) * weight
						b += float64(src.Pix[off+2]) * weight
					}
				}
				o := (y*w + x) * 4
				dst.Pix[o] = images.ClampByte(r)
				dst.Pix[o+1] = images.ClampByte(g)
				dst.Pix[o+2] = images.ClampByte(b)
				dst.Pix[o+3] = src.Pix[o+3]
			}
		}
	})
	return dst
}
