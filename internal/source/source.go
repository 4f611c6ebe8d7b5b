package source

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

// renderDPI — DPI растеризации PDF-страниц под Full HD.
const renderDPI = 150

// LoadBackdrop рендерит подложку сцены вместо процедурного фона.
// Форматы спецификации:
//
//	photo.png           — файл изображения (png/jpeg)
//	pdf:deck.pdf#3      — страница 3 документа (нумерация с 1)
//
// Результат всегда точно width×height: изображение вписывается с
// сохранением пропорций, поля добиваются черным.
func LoadBackdrop(spec string, width, height int) (*image.RGBA, error) {
	var img image.Image
	var err error

	if rest, ok := strings.CutPrefix(spec, "pdf:"); ok {
		img, err = renderPDFPage(rest)
	} else {
		img, err = loadImage(spec)
	}
	if err != nil {
		return nil, err
	}
	return fit(img, width, height), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pipeline.Resourcef("backdrop "+path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, pipeline.Resourcef("backdrop "+path, err)
	}
	return img, nil
}

func renderPDFPage(spec string) (image.Image, error) {
	path := spec
	page := 1
	if idx := strings.LastIndex(spec, "#"); idx >= 0 {
		path = spec[:idx]
		n, err := strconv.Atoi(spec[idx+1:])
		if err != nil || n < 1 {
			return nil, pipeline.Configf("backdrop", "invalid page in %q", spec)
		}
		page = n
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, pipeline.Resourcef("backdrop "+path, err)
	}
	defer doc.Close()

	if page > doc.NumPage() {
		return nil, pipeline.Configf("backdrop", "page %d out of range, %s has %d pages", page, path, doc.NumPage())
	}

	img, err := doc.ImageDPI(page-1, float64(renderDPI))
	if err != nil {
		return nil, pipeline.Resourcef("backdrop "+path, fmt.Errorf("page %d: %w", page, err))
	}
	return img, nil
}

// fit вписывает изображение в целевой холст с сохранением пропорций.
func fit(img image.Image, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)

	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return out
	}

	scale := float64(width) / float64(sb.Dx())
	if s := float64(height) / float64(sb.Dy()); s < scale {
		scale = s
	}
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x0 := (width - w) / 2
	y0 := (height - h) / 2

	xdraw.CatmullRom.Scale(out, image.Rect(x0, y0, x0+w, y0+h), img, sb, xdraw.Src, nil)
	return out
}
