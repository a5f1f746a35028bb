package detection

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/anthonynsimon/bild/noise"
	"github.com/anthonynsimon/bild/transform"
)

// spriteTemplate is a 64x64 black sprite with a white outline and a few white blocks.
func spriteTemplate() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	white := image.NewUniform(color.White)
	for _, r := range []image.Rectangle{
		image.Rect(4, 4, 60, 6),
		image.Rect(4, 58, 60, 60),
		image.Rect(4, 4, 6, 60),
		image.Rect(58, 4, 60, 60),
		image.Rect(12, 12, 28, 28),
		image.Rect(36, 16, 44, 48),
		image.Rect(14, 40, 30, 44),
	} {
		draw.Draw(img, r, white, image.Point{}, draw.Src)
	}
	return img
}

// blockTexture fills a w x h image with square blocks of random gray levels.
func blockTexture(w, h, block int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += block {
		for x := 0; x < w; x += block {
			v := uint8(rng.Intn(256))
			r := image.Rect(x, y, x+block, y+block).Intersect(img.Bounds())
			draw.Draw(img, r, image.NewUniform(color.RGBA{R: v, G: v, B: v, A: 255}), image.Point{}, draw.Src)
		}
	}
	return img
}

// uniformScene returns an opaque w x h image of a single gray level.
func uniformScene(w, h int, gray uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: gray, G: gray, B: gray, A: 255}), image.Point{}, draw.Src)
	return img
}

// paste composites src onto dst with its top-left at at.
func paste(dst *image.RGBA, src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Over)
}

// noiseScene returns deterministic monochrome uniform noise.
func noiseScene(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	return noise.Generate(w, h, &noise.Options{
		Monochrome: true,
		NoiseFn:    func() uint8 { return uint8(rng.Intn(256)) },
	})
}

// rotatedScaled rescales img by scale and rotates it by angle degrees, growing the
// bounds so no content is clipped. Uncovered corners are transparent.
func rotatedScaled(img image.Image, angle, scale float64) *image.RGBA {
	b := img.Bounds()
	resized := transform.Resize(img, int(float64(b.Dx())*scale), int(float64(b.Dy())*scale), transform.Linear)
	return transform.Rotate(resized, angle, &transform.RotationOptions{ResizeBounds: true})
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
