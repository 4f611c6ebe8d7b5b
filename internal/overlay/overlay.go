package overlay

import (
	"image"
	"image/draw"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

const (
	baseFontSize = 70.0
	minFontSize  = 24.0
	fontStep     = 4.0
	// outlineWidth — радиус обводки: маска глифа рисуется контрастным
	// цветом во всех смещениях квадрата (2w+1)², затем заливка поверх.
	outlineWidth = 4

	safeWidthFraction = 0.90
	bottomMarginFrac  = 0.08
	qrBadgeSize       = 140
	qrBadgeMargin     = 48
)

// Renderer рисует подписи сцен: двухпроходный текст (обводка + заливка),
// перенос строк и автоуменьшение кегля, чтобы подпись никогда не
// обрезалась. Чистое преобразование слоя: сам холст не трогается,
// результат — прозрачный слой для покадровой композиции.
type Renderer struct {
	fnt *opentype.Font
}

// NewRenderer парсит встроенный шрифт. Внешних файлов шрифтов нет:
// видео рендерится одинаково на любой машине.
func NewRenderer() (*Renderer, error) {
	fnt, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, pipeline.Resourcef("embedded font", err)
	}
	return &Renderer{fnt: fnt}, nil
}

// CaptionLayer возвращает прозрачный слой размера width×height с
// отрисованной подписью. Явные переводы строк сохраняются, длинные
// строки переносятся по словам; если блок не влезает в безопасную
// область, кегль уменьшается шагами до минимума.
func (r *Renderer) CaptionLayer(caption string, width, height int) (*image.RGBA, error) {
	layer := image.NewRGBA(image.Rect(0, 0, width, height))
	if strings.TrimSpace(caption) == "" {
		return layer, nil
	}

	maxW := int(float64(width) * safeWidthFraction)
	bottomMargin := int(float64(height) * bottomMarginFrac)
	maxH := height - 2*bottomMargin

	var face font.Face
	var lines []string
	size := baseFontSize
	for {
		f, err := opentype.NewFace(r.fnt, &opentype.FaceOptions{
			Size: size, DPI: 72, Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, pipeline.Resourcef("font face", err)
		}
		lines = wrapLines(f, caption, maxW)
		if fits(f, lines, maxW, maxH) || size-fontStep < minFontSize {
			face = f
			break
		}
		size -= fontStep
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	blockH := lineHeight * len(lines)

	// Блок по центру, но не ниже безопасного нижнего отступа.
	top := (height - blockH) / 2
	if top+blockH > height-bottomMargin {
		top = height - bottomMargin - blockH
	}
	if top < bottomMargin {
		top = bottomMargin
	}

	outline := image.Black
	fill := image.White

	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		x := (width - w) / 2
		y := top + i*lineHeight + metrics.Ascent.Ceil()

		d := font.Drawer{Dst: layer, Face: face}

		// Проход 1: обводка — смещенные копии маски глифа.
		d.Src = outline
		for dx := -outlineWidth; dx <= outlineWidth; dx++ {
			for dy := -outlineWidth; dy <= outlineWidth; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = fixed.P(x+dx, y+dy)
				d.DrawString(line)
			}
		}

		// Проход 2: заливка.
		d.Src = fill
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}

	return layer, nil
}

// QRBadge возвращает прозрачный слой с QR-кодом ссылки в правом
// нижнем углу.
func (r *Renderer) QRBadge(link string, width, height int) (*image.RGBA, error) {
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, pipeline.Configf("qr_link", "cannot encode %q: %v", link, err)
	}
	badge := q.Image(qrBadgeSize)

	layer := image.NewRGBA(image.Rect(0, 0, width, height))
	pos := image.Rect(
		width-qrBadgeSize-qrBadgeMargin,
		height-qrBadgeSize-qrBadgeMargin,
		width-qrBadgeMargin,
		height-qrBadgeMargin,
	)
	draw.Draw(layer, pos, badge, badge.Bounds().Min, draw.Src)
	return layer, nil
}

// Composite накладывает слой на кадр на месте.
func Composite(frame, layer *image.RGBA) {
	draw.Draw(frame, frame.Bounds(), layer, layer.Bounds().Min, draw.Over)
}

// wrapLines разбивает текст: сначала по явным '\n', затем переносит
// каждую строку по словам под ограничение ширины. Слово длиннее
// строки не обрезается — его уместит автоуменьшение кегля.
func wrapLines(face font.Face, text string, maxW int) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			candidate := cur + " " + w
			if font.MeasureString(face, candidate).Ceil() > maxW {
				out = append(out, cur)
				cur = w
			} else {
				cur = candidate
			}
		}
		out = append(out, cur)
	}
	return out
}

func fits(face font.Face, lines []string, maxW, maxH int) bool {
	if face.Metrics().Height.Ceil()*len(lines) > maxH {
		return false
	}
	for _, l := range lines {
		if font.MeasureString(face, l).Ceil() > maxW {
			return false
		}
	}
	return true
}
