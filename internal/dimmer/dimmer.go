// Package dimmer drives a single translucent overlay surface toward a
// target opacity over time and keeps its geometry in sync with the display.
package dimmer

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/phinze/dimdeck/internal/surface"
)

// Dimmer owns one overlay surface and animates its alpha with linear
// interpolation. It has no locking and no ticker of its own: every mutating
// call must happen inside an open surface.Session held by the caller, and
// Advance is driven by an external per-frame tick.
type Dimmer struct {
	display surface.Display

	// Overlay surface. Nil after Release or when creation failed.
	surf surface.Surface

	// Last alpha pushed to the surface.
	alpha float64

	// Alpha at the start of the current transition.
	startAlpha float64

	// Alpha the current transition ends at.
	targetAlpha float64

	// When the current transition began and how long it takes.
	startTime time.Time
	duration  time.Duration

	// Last geometry applied to the surface. Layer is -1 until first applied.
	layer      int
	lastWidth  int
	lastHeight int

	// True after Show, false after Hide.
	showing bool

	now func() time.Time
}

// New creates a Dimmer bound to the given display, allocating its overlay
// surface inside its own update session. Creation failure is logged and
// leaves the Dimmer inert: every operation becomes a no-op that reports
// not-animating.
func New(display surface.Display, factory surface.Factory, sess surface.Session) *Dimmer {
	d := &Dimmer{
		display: display,
		layer:   -1,
		now:     time.Now,
	}
	sess.Open()
	surf, err := factory.CreateOverlay()
	if err != nil {
		log.Printf("dimmer: creating overlay surface: %v", err)
	} else {
		d.surf = surf
	}
	if err := sess.Commit(); err != nil {
		log.Printf("dimmer: committing creation session: %v", err)
	}
	return d
}

// IsDimming reports whether the overlay is targeting a non-zero opacity,
// regardless of how far the current transition has progressed.
func (d *Dimmer) IsDimming() bool {
	return d.targetAlpha != 0
}

// IsAnimating reports whether a transition is in progress.
func (d *Dimmer) IsAnimating() bool {
	return d.targetAlpha != d.alpha
}

// TargetAlpha returns the opacity the overlay is converging toward.
func (d *Dimmer) TargetAlpha() float64 {
	return d.targetAlpha
}

// setAlpha pushes a new opacity to the surface, toggling visibility at the
// zero boundary. Native failures are logged and swallowed; the cached alpha
// still advances so the control logic stays consistent with intent.
func (d *Dimmer) setAlpha(alpha float64) {
	if d.alpha == alpha {
		return
	}
	if err := d.surf.SetAlpha(alpha); err != nil {
		log.Printf("dimmer: setting alpha: %v", err)
	} else if alpha == 0 && d.showing {
		if err := d.surf.Hide(); err != nil {
			log.Printf("dimmer: hiding overlay: %v", err)
		}
		d.showing = false
	} else if alpha > 0 && !d.showing {
		if err := d.surf.Show(); err != nil {
			log.Printf("dimmer: showing overlay: %v", err)
		}
		d.showing = true
	}
	d.alpha = alpha
}

// endsEarlier reports whether a transition of the given duration, started
// now, would finish before the transition currently in flight.
func (d *Dimmer) endsEarlier(duration time.Duration) bool {
	return d.now().Add(duration).Before(d.startTime.Add(d.duration))
}

// JumpToEnd collapses an in-flight transition to its final value without
// waiting for further ticks. Must be called inside an open session.
func (d *Dimmer) JumpToEnd() {
	if d.IsAnimating() {
		d.Present(d.layer, d.targetAlpha, 0)
	}
}

// Present begins or redirects a transition toward the given opacity at the
// given stacking layer. Must be called inside an open session.
//
// A new timeline is committed only when it changes the outcome: either the
// target differs from what is already in flight, or the new duration would
// finish earlier than the scheduled end. The target itself is always
// updated, so a later Advance converges on the latest request even when the
// timeline is left alone — an overlapping request with a longer duration
// never delays an already-scheduled faster completion.
func (d *Dimmer) Present(layer int, alpha float64, duration time.Duration) {
	if d.surf == nil {
		log.Printf("dimmer: present: no surface")
		// Make sure IsAnimating reports false.
		d.targetAlpha = 0
		d.alpha = 0
		return
	}

	d.syncGeometry(layer)

	animating := d.IsAnimating()
	if (animating && (d.targetAlpha != alpha || d.endsEarlier(duration))) ||
		(!animating && d.alpha != alpha) {
		if duration <= 0 {
			// No animation required, just set values.
			d.setAlpha(alpha)
		} else {
			// Start or continue animation with new parameters.
			d.startAlpha = d.alpha
			d.startTime = d.now()
			d.duration = duration
		}
	}
	d.targetAlpha = alpha
}

// syncGeometry reapplies position, size, and stacking order, but only when
// the display size or requested layer actually changed since the last
// apply. The overlay is oversized by 1.5x and backed off by a sixth on each
// axis so that rotating a frozen frame containing it never exposes an
// undimmed corner.
func (d *Dimmer) syncGeometry(layer int) {
	w, h := d.display.LogicalSize()
	dw := int(float64(w) * 1.5)
	dh := int(float64(h) * 1.5)
	x := -dw / 6
	y := -dh / 6

	if d.lastWidth == dw && d.lastHeight == dh && d.layer == layer {
		return
	}
	if err := d.surf.SetPosition(x, y); err != nil {
		log.Printf("dimmer: setting position: %v", err)
	} else if err := d.surf.SetSize(dw, dh); err != nil {
		log.Printf("dimmer: setting size: %v", err)
	} else if err := d.surf.SetLayer(layer); err != nil {
		log.Printf("dimmer: setting layer: %v", err)
	}
	d.lastWidth = dw
	d.lastHeight = dh
	d.layer = layer
}

// Dismiss fades the overlay to transparent over the given duration. It is a
// no-op when the overlay is already hidden, or already targeting zero on a
// timeline at least as fast. Must be called inside an open session.
func (d *Dimmer) Dismiss(duration time.Duration) {
	if d.showing && (d.targetAlpha != 0 || d.endsEarlier(duration)) {
		d.Present(d.layer, 0, duration)
	}
}

// Advance steps the transition per the last Present call, applying the
// interpolated alpha for the current time. It reports whether another step
// is still required. Must be called inside an open session.
func (d *Dimmer) Advance() bool {
	if d.surf == nil {
		log.Printf("dimmer: advance: no surface")
		// Ensure that IsAnimating reports false.
		d.targetAlpha = 0
		d.alpha = 0
		return false
	}

	if d.IsAnimating() {
		elapsed := d.now().Sub(d.startTime)
		delta := d.targetAlpha - d.startAlpha
		alpha := d.startAlpha + delta*(float64(elapsed)/float64(d.duration))
		if (delta > 0 && alpha > d.targetAlpha) || (delta < 0 && alpha < d.targetAlpha) {
			// Don't exceed limits.
			alpha = d.targetAlpha
		}
		d.setAlpha(alpha)
	}

	return d.IsAnimating()
}

// Release destroys the overlay surface. Safe to call more than once; after
// release every operation is inert.
func (d *Dimmer) Release() {
	if d.surf == nil {
		return
	}
	if err := d.surf.Destroy(); err != nil {
		log.Printf("dimmer: destroying overlay surface: %v", err)
	}
	d.surf = nil
}

// Dump writes the dimmer's state to w for operator inspection, one prefixed
// line per group of fields.
func (d *Dimmer) Dump(prefix string, w io.Writer) {
	fmt.Fprintf(w, "%ssurface=%v\n", prefix, d.surf)
	fmt.Fprintf(w, "%s layer=%d alpha=%v\n", prefix, d.layer, d.alpha)
	fmt.Fprintf(w, "%slastWidth=%d lastHeight=%d\n", prefix, d.lastWidth, d.lastHeight)
	fmt.Fprintf(w, "%slast animation: startTime=%v duration=%v now=%v\n",
		prefix, d.startTime, d.duration, d.now())
	fmt.Fprintf(w, "%s startAlpha=%v targetAlpha=%v\n", prefix, d.startAlpha, d.targetAlpha)
}
