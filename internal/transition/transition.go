package transition

import (
	"image"
	"math"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

// Compositor смешивает хвостовые кадры сцены i с головными кадрами
// сцены i+1 (кроссфейд). Окно перехода общее для пары сцен: кадры
// внутри окна принадлежат обеим сценам одновременно.
type Compositor struct {
	FPS int
}

func New(fps int) *Compositor {
	return &Compositor{FPS: fps}
}

// WindowFrames возвращает длину окна перехода в кадрах.
func (c *Compositor) WindowFrames(fade float64) int {
	return int(math.Round(fade * float64(c.FPS)))
}

// CheckWindow — защитная проверка перед смешиванием: окно не может
// превышать половину любой из соседних сцен. Нарушение означает баг
// конфигурации, прошедший мимо Validate, и обрывает рендер с полным
// контекстом вместо тихого клампа, меняющего длину вывода.
func (c *Compositor) CheckWindow(fade, durA, durB float64, sceneA int) error {
	if fade > durA/2 {
		return pipeline.Invariantf(sceneA, "transition window %.2fs exceeds half of scene duration %.2fs", fade, durA)
	}
	if fade > durB/2 {
		return pipeline.Invariantf(sceneA+1, "transition window %.2fs exceeds half of scene duration %.2fs", fade, durB)
	}
	return nil
}

// Blend записывает в dst покадровую интерполяцию (1-α)·a + α·b.
// При α=0 dst байт-в-байт равен a, при α=1 — b; между ними смесь
// монотонна по α. Размеры всех трех кадров должны совпадать.
func Blend(dst, a, b *image.RGBA, alpha float64) {
	if alpha <= 0 {
		copy(dst.Pix, a.Pix)
		return
	}
	if alpha >= 1 {
		copy(dst.Pix, b.Pix)
		return
	}
	// Фиксированная точка 1/256: достаточно для 8-битных каналов.
	ai := int(alpha*256 + 0.5)
	for i := range dst.Pix {
		va := int(a.Pix[i])
		vb := int(b.Pix[i])
		dst.Pix[i] = uint8(va + ((vb-va)*ai)>>8)
	}
}

// FadeFromBlack затемняет кадр на месте: α=0 — черный, α=1 — без
// изменений. Используется для входа первой сцены.
func FadeFromBlack(frame *image.RGBA, alpha float64) {
	if alpha >= 1 {
		return
	}
	if alpha < 0 {
		alpha = 0
	}
	ai := int(alpha*256 + 0.5)
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i+0] = uint8(int(frame.Pix[i+0]) * ai >> 8)
		frame.Pix[i+1] = uint8(int(frame.Pix[i+1]) * ai >> 8)
		frame.Pix[i+2] = uint8(int(frame.Pix[i+2]) * ai >> 8)
	}
}
