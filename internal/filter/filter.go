package filter

import (
	"image"
	"math"

	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/pipeline"
)

const (
	// gradientDepth — затемнение нижнего края кадра фильтром gradient.
	gradientDepth = 0.35
	// vignetteDepth — затемнение углов кадра виньеткой.
	vignetteDepth = 0.7
	// blurRadius — радиус box-размытия в пикселях.
	blurRadius = 6
)

// Engine применяет пост-фильтр к кадру. Маски градиента и виньетки
// детерминированы и считаются один раз на разрешение, поэтому фильтр —
// чистая функция кадра: одинаковый вход дает одинаковый выход.
type Engine struct {
	width  int
	height int

	rowFactor []float64 // gradient: множитель строки
	radial    []float64 // vignette: множитель пикселя
}

func New(width, height int) *Engine {
	e := &Engine{width: width, height: height}

	e.rowFactor = make([]float64, height)
	for y := 0; y < height; y++ {
		p := float64(y) / float64(height-1)
		e.rowFactor[y] = 1 - gradientDepth*p
	}

	e.radial = make([]float64, width*height)
	cx, cy := float64(width-1)/2, float64(height-1)/2
	maxDist := math.Hypot(cx, cy)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			f := 1 - vignetteDepth*d*d
			if f < 0 {
				f = 0
			}
			e.radial[y*width+x] = f
		}
	}
	return e
}

// Apply модифицирует кадр на месте. Размер кадра не меняется; каналы
// остаются в допустимом диапазоне для любых входных значений.
func (e *Engine) Apply(frame *image.RGBA, effect config.VisualEffect, scene int) error {
	b := frame.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return pipeline.Invariantf(scene, "filter input %dx%d does not match target %dx%d",
			b.Dx(), b.Dy(), e.width, e.height)
	}

	switch effect {
	case config.EffectNone:
		return nil
	case config.EffectGradient:
		e.applyGradient(frame)
		return nil
	case config.EffectVignette:
		e.applyVignette(frame)
		return nil
	case config.EffectBlur:
		e.applyBlur(frame)
		return nil
	default:
		return pipeline.Configf("visual_effect", "scene %d: unknown value %q", scene, effect)
	}
}

func (e *Engine) applyGradient(frame *image.RGBA) {
	for y := 0; y < e.height; y++ {
		f := e.rowFactor[y]
		row := frame.Pix[y*frame.Stride : y*frame.Stride+e.width*4]
		for x := 0; x < e.width; x++ {
			i := x * 4
			row[i+0] = mul8(row[i+0], f)
			row[i+1] = mul8(row[i+1], f)
			row[i+2] = mul8(row[i+2], f)
		}
	}
}

func (e *Engine) applyVignette(frame *image.RGBA) {
	for y := 0; y < e.height; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+e.width*4]
		for x := 0; x < e.width; x++ {
			f := e.radial[y*e.width+x]
			i := x * 4
			row[i+0] = mul8(row[i+0], f)
			row[i+1] = mul8(row[i+1], f)
			row[i+2] = mul8(row[i+2], f)
		}
	}
}

// applyBlur — сепарабельное box-размытие в два прохода со скользящей
// суммой; края зажимаются на границе кадра.
func (e *Engine) applyBlur(frame *image.RGBA) {
	w, h := e.width, e.height
	tmp := make([]uint8, len(frame.Pix))

	// Горизонтальный проход: frame -> tmp
	for y := 0; y < h; y++ {
		base := y * frame.Stride
		for c := 0; c < 3; c++ {
			sum := 0
			for k := -blurRadius; k <= blurRadius; k++ {
				sum += int(frame.Pix[base+clampIdx(k, w)*4+c])
			}
			n := 2*blurRadius + 1
			for x := 0; x < w; x++ {
				tmp[base+x*4+c] = uint8(sum / n)
				sum -= int(frame.Pix[base+clampIdx(x-blurRadius, w)*4+c])
				sum += int(frame.Pix[base+clampIdx(x+blurRadius+1, w)*4+c])
			}
		}
		for x := 0; x < w; x++ {
			tmp[base+x*4+3] = frame.Pix[base+x*4+3]
		}
	}

	// Вертикальный проход: tmp -> frame
	for x := 0; x < w; x++ {
		for c := 0; c < 3; c++ {
			sum := 0
			for k := -blurRadius; k <= blurRadius; k++ {
				sum += int(tmp[clampIdx(k, h)*frame.Stride+x*4+c])
			}
			n := 2*blurRadius + 1
			for y := 0; y < h; y++ {
				frame.Pix[y*frame.Stride+x*4+c] = uint8(sum / n)
				sum -= int(tmp[clampIdx(y-blurRadius, h)*frame.Stride+x*4+c])
				sum += int(tmp[clampIdx(y+blurRadius+1, h)*frame.Stride+x*4+c])
			}
		}
	}
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func mul8(v uint8, f float64) uint8 {
	x := float64(v) * f
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x + 0.5)
}
