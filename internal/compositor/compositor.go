// Package compositor maintains a stack of layers and flattens them into
// frames for an output. It is the window-manager side of the surface
// boundary: it hands out layer handles, batches their mutations, and makes
// a batch visible all at once when the update session commits.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"

	"github.com/phinze/dimdeck/internal/surface"
	"golang.org/x/image/draw"
)

// ErrDestroyed is returned by every mutation on a destroyed layer.
var ErrDestroyed = errors.New("layer destroyed")

// Output receives flattened frames. Size must be queryable at any time.
type Output interface {
	Size() (width, height int)
	Push(frame *image.RGBA) error
}

// Compositor owns the layer stack for one output. It implements
// surface.Display, surface.Session, and surface.Factory, so a dimmer can
// treat it as its entire environment.
type Compositor struct {
	mu     sync.Mutex
	output Output
	layers []*Layer
	nextID int
	dirty  bool
}

// New creates a Compositor for the given output.
func New(output Output) *Compositor {
	return &Compositor{output: output}
}

// LogicalSize reports the output's size.
func (c *Compositor) LogicalSize() (int, int) {
	return c.output.Size()
}

// Open begins an update batch. Layer mutations between Open and Commit have
// no visible effect until the commit.
func (c *Compositor) Open() {}

// Commit flattens the layer stack and pushes the frame to the output. When
// nothing changed since the last commit, no frame is pushed.
func (c *Compositor) Commit() error {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	c.dirty = false
	frame := c.flatten()
	c.mu.Unlock()

	if err := c.output.Push(frame); err != nil {
		return fmt.Errorf("pushing frame: %w", err)
	}
	return nil
}

// CreateOverlay allocates a hidden solid-black layer. Its alpha does the
// dimming; geometry and stacking come later from whoever owns the handle.
func (c *Compositor) CreateOverlay() (surface.Surface, error) {
	return c.newLayer(&Layer{
		w:    16,
		h:    16,
		fill: color.Black,
	}), nil
}

// NewContentLayer allocates a visible layer at the given z-order that draws
// the image set via SetContent, sized to the output.
func (c *Compositor) NewContentLayer(z int) *Layer {
	w, h := c.output.Size()
	return c.newLayer(&Layer{
		w:       w,
		h:       h,
		z:       z,
		alpha:   1,
		visible: true,
	})
}

func (c *Compositor) newLayer(l *Layer) *Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	l.c = c
	l.id = c.nextID
	c.nextID++
	c.layers = append(c.layers, l)
	c.dirty = true
	return l
}

// removeLayer detaches a destroyed layer from the stack.
func (c *Compositor) removeLayer(l *Layer) {
	for i, cand := range c.layers {
		if cand == l {
			c.layers = append(c.layers[:i], c.layers[i+1:]...)
			break
		}
	}
	c.dirty = true
}

// flatten composites visible layers in ascending z-order. Caller holds the
// mutex.
func (c *Compositor) flatten() *image.RGBA {
	w, h := c.output.Size()
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(frame, frame.Bounds(), image.Black, image.Point{}, draw.Src)

	stack := make([]*Layer, len(c.layers))
	copy(stack, c.layers)
	sort.SliceStable(stack, func(i, j int) bool { return stack[i].z < stack[j].z })

	for _, l := range stack {
		if !l.visible || l.alpha <= 0 {
			continue
		}
		rect := image.Rect(l.x, l.y, l.x+l.w, l.y+l.h).Intersect(frame.Bounds())
		if rect.Empty() {
			continue
		}
		switch {
		case l.content != nil:
			origin := image.Point{X: rect.Min.X - l.x, Y: rect.Min.Y - l.y}
			if l.alpha >= 1 {
				draw.Draw(frame, rect, l.content, origin, draw.Over)
			} else {
				mask := image.NewUniform(color.Alpha{A: uint8(l.alpha * 255)})
				draw.DrawMask(frame, rect, l.content, origin, mask, image.Point{}, draw.Over)
			}
		case l.fill != nil:
			r, g, b, _ := l.fill.RGBA()
			a := l.alpha
			src := image.NewUniform(color.RGBA{
				R: uint8(float64(r>>8) * a),
				G: uint8(float64(g>>8) * a),
				B: uint8(float64(b>>8) * a),
				A: uint8(a * 255),
			})
			draw.Draw(frame, rect, src, image.Point{}, draw.Over)
		}
	}
	return frame
}
