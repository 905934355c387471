// Package surface defines the boundary between the dimmer and whatever
// actually puts pixels on a display: a drawable surface handle, the display
// it covers, and the update session that batches surface mutations.
package surface

// Display reports the logical size of the output an overlay covers.
// Implementations must be queryable at any time.
type Display interface {
	LogicalSize() (width, height int)
}

// Surface is an exclusively-owned drawable handle. Every mutator can fail
// at the native level; callers decide whether a failure is fatal. After
// Destroy the handle is dead and all further calls return an error.
type Surface interface {
	SetPosition(x, y int) error
	SetSize(width, height int) error
	SetLayer(layer int) error
	SetAlpha(alpha float64) error
	Show() error
	Hide() error
	Destroy() error
}

// Session is the atomic-update scope. Mutations issued between Open and
// Commit become visible together on the next push to the display. The
// dimmer never opens or commits a session itself; its callers do.
type Session interface {
	Open()
	Commit() error
}

// Factory allocates overlay surfaces. A freshly created overlay is a
// hidden, full-bleed solid fill whose alpha does the dimming.
type Factory interface {
	CreateOverlay() (Surface, error)
}
