package filters

import (
	"math"
	"math/rand/v2"

	"github.com/disintegration/gift"

	"github.com/nvr-ai/go-imagekit/images"
)

// channelShift is the maximum per-channel offset of the temperature and tint
// sliders at full strength.
const channelShift = 30.0

// temperatureTint shifts channels: temperature adds to red and subtracts from
// blue, tint subtracts from green. gift clamps the results.
func temperatureTint(temperature, tint float64) gift.Filter {
	dr := float32(channelShift * temperature / 100 / 255)
	dg := float32(-channelShift * tint / 100 / 255)
	return gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		return r + dr, g + dg, b - dr, a
	})
}

// VignetteFactor returns the RGB multiplier of pixel (x, y) in a w x h image.
// The factor is not floor-clamped; channel results are clamped when stored.
func VignetteFactor(x, y, w, h int, amount float64) float64 {
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Sqrt(cx*cx + cy*cy)
	if maxDist == 0 {
		return 1
	}
	dist := math.Hypot(float64(x)-cx, float64(y)-cy)
	return 1 - (dist/maxDist)*amount/100
}

func applyVignette(img *images.RasterImage, amount float64, workers int) {
	images.Parallel(workers, img.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < img.Width; x++ {
				f := VignetteFactor(x, y, img.Width, img.Height, amount)
				i := img.Offset(x, y)
				img.Pix[i] = images.ClampByte(float64(img.Pix[i]) * f)
				img.Pix[i+1] = images.ClampByte(float64(img.Pix[i+1]) * f)
				img.Pix[i+2] = images.ClampByte(float64(img.Pix[i+2]) * f)
			}
		}
	})
}

// applyNoise adds uniform noise in [-amount*2.55/2, amount*2.55/2] to each
// color channel independently. It runs serially so a seeded source produces
// the same image every time.
func applyNoise(img *images.RasterImage, amount float64, src RandSource) {
	half := amount * 2.55 / 2
	next := rand.Float64
	if src != nil {
		next = src.Float64
	}

	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			n := (next()*2 - 1) * half
			img.Pix[i+c] = images.ClampByte(float64(img.Pix[i+c]) + n)
		}
	}
}
