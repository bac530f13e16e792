package kernels

import "github.com/nvr-ai/go-imagekit/images"

// SmoothEdges softens a cut-out's alpha boundary in place.
//
// Only pixels that are partially transparent (0 < alpha < 255) are touched;
// their alpha becomes the box average of the alpha values in the surrounding
// (2*radius+1)^2 window, read from a snapshot so updates do not cascade.
// Fully opaque and fully transparent pixels keep their values. Color channels
// are left as they are.
//
// Arguments:
//   - img: The raster to modify.
//   - radius: The window radius; values below 1 are a no-op.
//
// Returns:
//   - int: The number of pixels whose alpha was rewritten.
func SmoothEdges(img *images.RasterImage, radius int) int {
	if radius < 1 {
		return 0
	}

	w, h := img.Width, img.Height
	alpha := make([]uint8, w*h)
	for i := range alpha {
		alpha[i] = img.Pix[i*4+3]
	}

	touched := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := alpha[y*w+x]
			if a == 0 || a == 0xff {
				continue
			}

			var sum, count uint32
			for dy := -radius; dy <= radius; dy++ {
				sy := clampCoord(y+dy, h)
				for dx := -radius; dx <= radius; dx++ {
					sx := clampCoord(x+dx, w)
					sum += uint32(alpha[sy*w+sx])
					count++
				}
			}
			img.Pix[(y*w+x)*4+3] = uint8((sum + count/2) / count)
			touched++
		}
	}
	return touched
}
