package palette

import (
	"hash/fnv"
	"image/color"
)

// Direction задает направление градиента фона.
type Direction int

const (
	Vertical Direction = iota
	Horizontal
	Diagonal
)

// Palette — детерминированный цветовой seed сцены. Одинаковый prompt
// всегда дает одинаковую палитру: никакой случайности, фикстуры в
// тестах воспроизводимы побайтово.
type Palette struct {
	Base      color.RGBA
	Secondary color.RGBA
	Gradient  Direction
}

// Derive выводит палитру из текста prompt. Каналы ложатся в диапазон
// [50,249], чтобы фон не уходил в чистый черный или белый и текст
// поверх оставался читаемым.
func Derive(prompt string) Palette {
	h := fnv.New64a()
	h.Write([]byte(prompt))
	sum := h.Sum64()

	base := color.RGBA{
		R: uint8(sum%200 + 50),
		G: uint8((sum*2)%200 + 50),
		B: uint8((sum*3)%200 + 50),
		A: 255,
	}

	// Второй цвет градиента — тот же тон, приглушенный вдвое.
	secondary := color.RGBA{
		R: base.R / 2,
		G: base.G / 2,
		B: base.B / 2,
		A: 255,
	}

	return Palette{
		Base:      base,
		Secondary: secondary,
		Gradient:  Direction(sum % 3),
	}
}
