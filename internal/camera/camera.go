package camera

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/system"
)

// MaxZoom — прирост зума к концу сцены: 1.0 → 1.3.
const MaxZoom = 0.3

// PanWidthFraction — ширина окна панорамы относительно холста.
const PanWidthFraction = 0.8

// Engine превращает статичный холст сцены в кадр для момента времени
// t∈[0,1]. Преобразование непрерывно по t: на соседних кадрах окно
// сдвигается меньше чем на пиксель исходника, скачков нет.
type Engine struct {
	Width  int
	Height int
}

func New(width, height int) *Engine {
	return &Engine{Width: width, Height: height}
}

// CropWindow возвращает видимое окно холста для эффекта и момента t.
// Инвариант: окно всегда внутри границ холста.
func (e *Engine) CropWindow(effect config.CameraEffect, t float64) image.Rectangle {
	t = clamp01(t)
	full := image.Rect(0, 0, e.Width, e.Height)

	switch effect {
	case config.CameraZoom:
		scale := 1.0 + t*MaxZoom
		cw := int(math.Round(float64(e.Width) / scale))
		ch := int(math.Round(float64(e.Height) / scale))
		x0 := (e.Width - cw) / 2
		y0 := (e.Height - ch) / 2
		return image.Rect(x0, y0, x0+cw, y0+ch).Intersect(full)

	case config.CameraPan:
		cw := int(math.Round(float64(e.Width) * PanWidthFraction))
		// Окно уезжает от левого края к правому линейно по t.
		x0 := int(math.Round(t * float64(e.Width-cw)))
		if x0+cw > e.Width {
			x0 = e.Width - cw
		}
		return image.Rect(x0, 0, x0+cw, e.Height)

	default: // static
		return full
	}
}

// Frame вырезает окно и пересэмплирует его обратно в полное
// разрешение. Выход — всегда новый буфер: холст сцены разделяется
// воркерами и не должен мутироваться.
func (e *Engine) Frame(canvas *image.RGBA, effect config.CameraEffect, t float64, scene int) (*image.RGBA, error) {
	bounds := canvas.Bounds()
	if bounds.Dx() != e.Width || bounds.Dy() != e.Height {
		return nil, pipeline.Invariantf(scene, "canvas %dx%d does not match target %dx%d",
			bounds.Dx(), bounds.Dy(), e.Width, e.Height)
	}

	win := e.CropWindow(effect, t)
	if !win.In(bounds) {
		return nil, pipeline.Invariantf(scene, "camera window %v outside canvas %v (effect=%s, t=%.4f)",
			win, bounds, effect, t)
	}

	// Буфер из пула: между рендером и энкодером кадры живут недолго.
	out := system.GetImage(image.Rect(0, 0, e.Width, e.Height))
	if win == bounds {
		copy(out.Pix, canvas.Pix)
		return out, nil
	}

	xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, win, xdraw.Src, nil)
	return out, nil
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
