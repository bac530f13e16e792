package kernels

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-imagekit/images"
)

func genRaster(w, h int, alpha bool) *images.RasterImage {
	img := &images.RasterImage{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		if alpha {
			img.Pix[i+3] = uint8(rng.Intn(256))
		} else {
			img.Pix[i+3] = 255
		}
	}
	return img
}

func BenchmarkBoxBlur_640_r3(b *testing.B) {
	img := genRaster(640, 640, false)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BoxBlur(img, Options{Radius: 3})
	}
}

func BenchmarkGaussianBlur_640_s2(b *testing.B) {
	img := genRaster(640, 640, false)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GaussianBlur(img, Options{Sigma: 2})
	}
}

func BenchmarkGaussianBlur_1080p_s2_Parallel(b *testing.B) {
	img := genRaster(1920, 1080, false)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GaussianBlur(img, Options{Sigma: 2, Workers: 8})
	}
}

func BenchmarkSharpen_640(b *testing.B) {
	img := genRaster(640, 640, false)
	k := SharpenKernel(40)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Convolve3x3(img, k, 1)
	}
}

func BenchmarkSmoothEdges_640(b *testing.B) {
	src := genRaster(640, 640, true)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		img := src.Clone()
		SmoothEdges(img, 2)
	}
}
