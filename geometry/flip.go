package geometry

import "github.com/nvr-ai/go-imagekit/images"

// FlipH mirrors the raster left to right, in place.
type FlipH struct{}

// Name implements Op.
func (FlipH) Name() string { return "flip-horizontal" }

// Apply implements Op.
func (FlipH) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	for y := 0; y < img.Height; y++ {
		for l, r := 0, img.Width-1; l < r; l, r = l+1, r-1 {
			swapPixels(img.Pix, img.Offset(l, y), img.Offset(r, y))
		}
	}
	return img, nil
}

// FlipV mirrors the raster top to bottom, in place.
type FlipV struct{}

// Name implements Op.
func (FlipV) Name() string { return "flip-vertical" }

// Apply implements Op.
func (FlipV) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	rowBytes := img.Width * 4
	tmp := make([]uint8, rowBytes)
	for t, b := 0, img.Height-1; t < b; t, b = t+1, b-1 {
		top := img.Pix[t*rowBytes : (t+1)*rowBytes]
		bottom := img.Pix[b*rowBytes : (b+1)*rowBytes]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
	return img, nil
}

func swapPixels(pix []uint8, i, j int) {
	pix[i], pix[j] = pix[j], pix[i]
	pix[i+1], pix[j+1] = pix[j+1], pix[i+1]
	pix[i+2], pix[j+2] = pix[j+2], pix[i+2]
	pix[i+3], pix[j+3] = pix[j+3], pix[i+3]
}
