package compositor

import (
	"fmt"
	"image"
	"image/color"
)

// Layer is one drawable in the compositor's stack. It satisfies
// surface.Surface: mutations only record state and mark the compositor
// dirty; nothing reaches the output until the session commits.
type Layer struct {
	c  *Compositor
	id int

	x, y int
	w, h int
	z    int

	alpha   float64
	visible bool

	// Exactly one of these draws: an image for content layers, a solid
	// fill for overlay layers.
	content image.Image
	fill    color.Color

	destroyed bool
}

// String identifies the layer in logs and state dumps.
func (l *Layer) String() string {
	return fmt.Sprintf("layer#%d(%dx%d z=%d)", l.id, l.w, l.h, l.z)
}

// SetPosition moves the layer's top-left corner.
func (l *Layer) SetPosition(x, y int) error {
	return l.mutate(func() { l.x, l.y = x, y })
}

// SetSize resizes the layer.
func (l *Layer) SetSize(width, height int) error {
	return l.mutate(func() { l.w, l.h = width, height })
}

// SetLayer changes the stacking order; higher z composites later.
func (l *Layer) SetLayer(z int) error {
	return l.mutate(func() { l.z = z })
}

// SetAlpha changes the layer's opacity.
func (l *Layer) SetAlpha(alpha float64) error {
	return l.mutate(func() { l.alpha = alpha })
}

// Show makes the layer eligible for compositing.
func (l *Layer) Show() error {
	return l.mutate(func() { l.visible = true })
}

// Hide removes the layer from compositing without destroying it.
func (l *Layer) Hide() error {
	return l.mutate(func() { l.visible = false })
}

// SetContent replaces the image a content layer draws.
func (l *Layer) SetContent(img image.Image) error {
	return l.mutate(func() { l.content = img })
}

// Destroy detaches the layer from the compositor. Further mutations return
// ErrDestroyed.
func (l *Layer) Destroy() error {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	l.destroyed = true
	l.c.removeLayer(l)
	return nil
}

func (l *Layer) mutate(apply func()) error {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	if l.destroyed {
		return ErrDestroyed
	}
	apply()
	l.c.dirty = true
	return nil
}
