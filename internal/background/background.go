package background

import (
	"image"
	"image/color"

	"github.com/ivlev/prompt2video/internal/palette"
)

// Synthesize рисует холст сцены: плавный двухцветный градиент из
// палитры, ровно в целевом разрешении. Чистая функция от палитры и
// размеров.
func Synthesize(pal palette.Palette, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := progress(pal.Gradient, x, y, width, height)
			img.SetRGBA(x, y, lerpRGBA(pal.Base, pal.Secondary, t))
		}
	}
	return img
}

// progress возвращает позицию точки вдоль оси градиента в [0,1].
func progress(dir palette.Direction, x, y, w, h int) float64 {
	switch dir {
	case palette.Horizontal:
		return float64(x) / float64(w-1)
	case palette.Diagonal:
		return (float64(x)/float64(w-1) + float64(y)/float64(h-1)) / 2
	default: // Vertical
		return float64(y) / float64(h-1)
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: 255,
	}
}

// lerp8 интерполирует один канал; результат по построению в [0,255].
func lerp8(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}
