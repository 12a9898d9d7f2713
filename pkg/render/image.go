package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/ptroute/ptroute/pkg/model"
)

// toImage tone-maps the accumulation buffer into an 8-bit image: divide by
// the sample count, clamp to [0,1], square-root gamma, scale to 255.
func toImage(accum []Vec3, width, height, samples int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scale := 1 / float64(max(samples, 1))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := accum[y*width+x].Scale(scale).Clamp01()
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(math.Sqrt(c.X) * 255),
				G: uint8(math.Sqrt(c.Y) * 255),
				B: uint8(math.Sqrt(c.Z) * 255),
				A: 255,
			})
		}
	}

	return img
}

// WritePNG encodes img and writes it atomically, so a failed write never
// leaves a previously rendered file corrupted.
func WritePNG(path string, img *image.RGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return model.WriteAtomic(path, buf.Bytes())
}
