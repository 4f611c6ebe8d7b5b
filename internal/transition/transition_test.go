package transition

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ivlev/prompt2video/internal/pipeline"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestWindowFrames(t *testing.T) {
	c := New(24)

	if got := c.WindowFrames(0.5); got != 12 {
		t.Errorf("0.5s at 24fps: got %d frames, want 12", got)
	}
	if got := c.WindowFrames(0); got != 0 {
		t.Errorf("Zero fade: got %d frames, want 0", got)
	}
}

func TestCheckWindow(t *testing.T) {
	c := New(24)

	if err := c.CheckWindow(0.5, 4, 4, 0); err != nil {
		t.Errorf("0.5s window between 4s scenes should pass: %v", err)
	}
	err := c.CheckWindow(3, 4, 8, 1)
	if err == nil {
		t.Fatal("3s window must not fit a 4s scene")
	}
	if !errors.Is(err, pipeline.ErrInvariant) {
		t.Errorf("Expected invariant violation, got %v", err)
	}
	// Second scene too short.
	if err := c.CheckWindow(3, 8, 4, 1); err == nil {
		t.Error("3s window must not fit the following 4s scene")
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := solid(16, 16, color.RGBA{10, 20, 30, 255})
	b := solid(16, 16, color.RGBA{200, 210, 220, 255})
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))

	// alpha=0 is byte-exact scene A, alpha=1 byte-exact scene B.
	Blend(dst, a, b, 0)
	for i := range dst.Pix {
		if dst.Pix[i] != a.Pix[i] {
			t.Fatalf("Blend(0) differs from a at byte %d", i)
		}
	}
	Blend(dst, a, b, 1)
	for i := range dst.Pix {
		if dst.Pix[i] != b.Pix[i] {
			t.Fatalf("Blend(1) differs from b at byte %d", i)
		}
	}
}

func TestBlendMonotonic(t *testing.T) {
	a := solid(8, 8, color.RGBA{0, 0, 0, 255})
	b := solid(8, 8, color.RGBA{255, 255, 255, 255})
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))

	prev := -1
	for i := 0; i <= 10; i++ {
		Blend(dst, a, b, float64(i)/10)
		v := int(dst.Pix[0])
		if v < prev {
			t.Fatalf("Blend not monotonic: alpha=%.1f gave %d after %d", float64(i)/10, v, prev)
		}
		prev = v
	}
}

func TestBlendInPlace(t *testing.T) {
	// The renderer blends into the A buffer; dst==a must be safe.
	a := solid(8, 8, color.RGBA{100, 100, 100, 255})
	b := solid(8, 8, color.RGBA{200, 200, 200, 255})

	Blend(a, a, b, 0.5)
	v := a.Pix[0]
	if v <= 100 || v >= 200 {
		t.Errorf("In-place blend at alpha=0.5 out of range: %d", v)
	}
}

func TestFadeFromBlack(t *testing.T) {
	frame := solid(8, 8, color.RGBA{240, 120, 60, 200})

	FadeFromBlack(frame, 0)
	if frame.Pix[0] != 0 || frame.Pix[1] != 0 || frame.Pix[2] != 0 {
		t.Errorf("alpha=0 should give black, got %v", frame.RGBAAt(0, 0))
	}
	if frame.Pix[3] != 200 {
		t.Errorf("FadeFromBlack must not modify alpha, got %d", frame.Pix[3])
	}

	frame = solid(8, 8, color.RGBA{240, 120, 60, 255})
	FadeFromBlack(frame, 1)
	if frame.Pix[0] != 240 {
		t.Errorf("alpha=1 must leave frame untouched, got %d", frame.Pix[0])
	}
}
