package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	f, err := opentype.NewFace(r.fnt, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		t.Fatalf("NewFace failed: %v", err)
	}
	return f
}

func TestCaptionLayerEmpty(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	layer, err := r.CaptionLayer("   ", 320, 180)
	if err != nil {
		t.Fatalf("CaptionLayer failed: %v", err)
	}
	for i := 3; i < len(layer.Pix); i += 4 {
		if layer.Pix[i] != 0 {
			t.Fatal("Blank caption must produce a fully transparent layer")
		}
	}
}

func TestCaptionLayerDrawsOutlinedText(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	layer, err := r.CaptionLayer("Hello", 640, 360)
	if err != nil {
		t.Fatalf("CaptionLayer failed: %v", err)
	}
	if b := layer.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Fatalf("Layer size %v, want 640x360", b)
	}

	var white, black int
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			c := layer.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			if c.R > 200 && c.G > 200 && c.B > 200 {
				white++
			}
			if c.R < 50 && c.G < 50 && c.B < 50 {
				black++
			}
		}
	}
	if white == 0 {
		t.Error("Caption fill (white) not found on layer")
	}
	if black == 0 {
		t.Error("Caption outline (black) not found on layer")
	}
}

func TestCaptionLayerLongTextStaysInside(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	long := "This caption is deliberately much longer than one line so it has to wrap and possibly shrink"
	layer, err := r.CaptionLayer(long, 640, 360)
	if err != nil {
		t.Fatalf("CaptionLayer failed: %v", err)
	}

	// Nothing may touch the outermost band: wrapped lines fit the safe
	// area even after outline expansion.
	margin := 20
	for y := 0; y < 360; y++ {
		for x := 0; x < margin; x++ {
			if layer.RGBAAt(x, y).A != 0 {
				t.Fatalf("Caption leaked into left margin at (%d,%d)", x, y)
			}
			if layer.RGBAAt(639-x, y).A != 0 {
				t.Fatalf("Caption leaked into right margin at (%d,%d)", 639-x, y)
			}
		}
	}
}

func TestWrapLinesExplicitBreaks(t *testing.T) {
	face := testFace(t, 20)

	lines := wrapLines(face, "first\nsecond", 10000)
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("Explicit newline not preserved: %q", lines)
	}
}

func TestWrapLinesWordWrap(t *testing.T) {
	face := testFace(t, 20)

	wide := font.MeasureString(face, "aaaa bbbb").Ceil()
	lines := wrapLines(face, "aaaa bbbb cccc", wide-1)
	if len(lines) < 2 {
		t.Errorf("Expected wrapping under maxW=%d, got %q", wide-1, lines)
	}
	for _, l := range lines {
		if l == "" {
			t.Errorf("Word wrap produced an empty line: %q", lines)
		}
	}
}

func TestQRBadgePlacement(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	layer, err := r.QRBadge("https://example.com/watch", 1920, 1080)
	if err != nil {
		t.Fatalf("QRBadge failed: %v", err)
	}

	// Badge occupies the bottom-right corner region only.
	inBadge := layer.RGBAAt(1920-qrBadgeMargin-qrBadgeSize/2, 1080-qrBadgeMargin-qrBadgeSize/2)
	if inBadge.A == 0 {
		t.Error("QR badge region is empty")
	}
	if layer.RGBAAt(10, 10).A != 0 {
		t.Error("QR badge leaked outside its corner")
	}
}

func TestCompositeOverlaysLayer(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	layer, err := r.CaptionLayer("X", 320, 180)
	if err != nil {
		t.Fatalf("CaptionLayer failed: %v", err)
	}

	frame := solidRGBA(320, 180, color.RGBA{10, 10, 10, 255})
	Composite(frame, layer)

	changed := false
	for y := 0; y < 180 && !changed; y++ {
		for x := 0; x < 320; x++ {
			if c := frame.RGBAAt(x, y); c.R > 100 {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("Composite did not draw the caption onto the frame")
	}
}
