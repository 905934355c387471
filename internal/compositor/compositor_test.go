package compositor

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// fakeOutput records pushed frames.
type fakeOutput struct {
	w, h   int
	frames []*image.RGBA
	err    error
}

func (o *fakeOutput) Size() (int, int) { return o.w, o.h }

func (o *fakeOutput) Push(frame *image.RGBA) error {
	if o.err != nil {
		return o.err
	}
	o.frames = append(o.frames, frame)
	return nil
}

func lastFrame(t *testing.T, o *fakeOutput) *image.RGBA {
	t.Helper()
	if len(o.frames) == 0 {
		t.Fatal("expected at least one pushed frame")
	}
	return o.frames[len(o.frames)-1]
}

func TestCommitBatchesMutations(t *testing.T) {
	out := &fakeOutput{w: 10, h: 10}
	c := New(out)

	c.Open()
	surf, err := c.CreateOverlay()
	if err != nil {
		t.Fatalf("CreateOverlay: %v", err)
	}
	surf.SetPosition(0, 0)
	surf.SetSize(10, 10)
	surf.SetAlpha(1)
	surf.Show()

	// Nothing visible until the session commits.
	if len(out.frames) != 0 {
		t.Fatalf("expected no frames before commit, got %d", len(out.frames))
	}
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected one frame after commit, got %d", len(out.frames))
	}

	// A clean commit pushes nothing.
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(out.frames) != 1 {
		t.Errorf("expected no frame from a clean commit, got %d", len(out.frames))
	}
}

func TestDimLayerDarkensContent(t *testing.T) {
	out := &fakeOutput{w: 4, h: 4}
	c := New(out)

	content := c.NewContentLayer(0)
	content.SetContent(image.NewUniform(color.White))

	c.Open()
	surf, _ := c.CreateOverlay()
	surf.SetPosition(0, 0)
	surf.SetSize(4, 4)
	surf.SetLayer(10)
	surf.SetAlpha(0.5)
	surf.Show()
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := lastFrame(t, out).RGBAAt(2, 2)
	// White under a half-opaque black fill lands at mid gray.
	if got.R != 128 || got.G != 128 || got.B != 128 {
		t.Errorf("expected dimmed pixel (128,128,128), got (%d,%d,%d)", got.R, got.G, got.B)
	}
}

func TestHiddenOverlayLeavesContentAlone(t *testing.T) {
	out := &fakeOutput{w: 4, h: 4}
	c := New(out)

	content := c.NewContentLayer(0)
	content.SetContent(image.NewUniform(color.White))

	c.Open()
	surf, _ := c.CreateOverlay()
	surf.SetPosition(0, 0)
	surf.SetSize(4, 4)
	surf.SetLayer(10)
	surf.SetAlpha(0.5)
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := lastFrame(t, out).RGBAAt(1, 1)
	if got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("expected untouched white pixel, got (%d,%d,%d)", got.R, got.G, got.B)
	}
}

func TestZOrder(t *testing.T) {
	out := &fakeOutput{w: 2, h: 2}
	c := New(out)

	// Red below, green above, both fully opaque and full bleed.
	below := c.NewContentLayer(1)
	below.SetContent(image.NewUniform(color.RGBA{R: 255, A: 255}))
	above := c.NewContentLayer(2)
	above.SetContent(image.NewUniform(color.RGBA{G: 255, A: 255}))

	c.Open()
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := lastFrame(t, out).RGBAAt(0, 0)
	if got.G != 255 || got.R != 0 {
		t.Errorf("expected higher z-order layer on top, got (%d,%d,%d)", got.R, got.G, got.B)
	}

	// Restacking the red layer above the green one flips the result.
	below.SetLayer(3)
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got = lastFrame(t, out).RGBAAt(0, 0)
	if got.R != 255 || got.G != 0 {
		t.Errorf("expected restacked layer on top, got (%d,%d,%d)", got.R, got.G, got.B)
	}
}

func TestOverlayClipsToFrame(t *testing.T) {
	out := &fakeOutput{w: 4, h: 4}
	c := New(out)

	c.Open()
	surf, _ := c.CreateOverlay()
	// Oversized and backed off, the way the dimmer positions it.
	surf.SetPosition(-1, -1)
	surf.SetSize(6, 6)
	surf.SetAlpha(1)
	surf.Show()
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := lastFrame(t, out).RGBAAt(3, 3)
	if got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("expected corner covered by oversized overlay, got (%d,%d,%d)", got.R, got.G, got.B)
	}
}

func TestDestroyedLayerRejectsMutations(t *testing.T) {
	out := &fakeOutput{w: 4, h: 4}
	c := New(out)

	surf, _ := c.CreateOverlay()
	if err := surf.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := surf.SetAlpha(0.5); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed from mutation, got %v", err)
	}
	if err := surf.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed from double destroy, got %v", err)
	}
	if len(c.layers) != 0 {
		t.Errorf("expected layer detached from stack, got %d layers", len(c.layers))
	}
}

func TestCommitWrapsPushError(t *testing.T) {
	pushErr := errors.New("device gone")
	out := &fakeOutput{w: 4, h: 4, err: pushErr}
	c := New(out)

	c.NewContentLayer(0)
	if err := c.Commit(); !errors.Is(err, pushErr) {
		t.Errorf("expected push error surfaced from commit, got %v", err)
	}
}
