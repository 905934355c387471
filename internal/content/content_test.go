package content

import (
	"image/color"
	"testing"
	"time"
)

func TestRenderFrameSize(t *testing.T) {
	r := New()
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) }

	img := r.Render(288, 144)
	if got := img.Bounds(); got.Dx() != 288 || got.Dy() != 144 {
		t.Fatalf("expected 288x144 frame, got %v", got)
	}

	// Background fill reaches the far corner.
	if got := img.RGBAAt(287, 143); got != colorBackground {
		t.Errorf("expected background pixel, got %v", got)
	}
}

func TestRenderSVGIconFallsBackOnBadInput(t *testing.T) {
	img := renderSVGIcon("not an svg", 16, color.White)
	if got := img.Bounds(); got.Dx() != 16 || got.Dy() != 16 {
		t.Errorf("expected empty 16x16 fallback, got %v", got)
	}
}

func TestRenderTinyFrame(t *testing.T) {
	r := New()
	// Degenerate sizes must not panic.
	r.Render(2, 2)
	r.Render(0, 0)
}
