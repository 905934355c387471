// Package deck pushes composited frames to a Stream Deck: the key grid is
// treated as one logical display, and each frame is sliced into per-key
// tiles. When the device has a touch strip, the frame is mirrored onto it.
package deck

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"rafaelmartins.com/p/streamdeck"
)

// Output drives one Stream Deck device as a tiled display.
type Output struct {
	device  *streamdeck.Device
	keys    []streamdeck.KeyID
	columns int
	rows    int
	keySize int

	stripRect image.Rectangle
}

// New creates an Output for the given opened device, laying keys out in the
// given number of columns.
func New(device *streamdeck.Device, columns int) (*Output, error) {
	o := &Output{
		device:  device,
		columns: columns,
	}

	if err := device.ForEachKey(func(key streamdeck.KeyID) error {
		o.keys = append(o.keys, key)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("enumerating keys: %w", err)
	}
	if len(o.keys) == 0 {
		return nil, fmt.Errorf("device has no keys")
	}
	if columns <= 0 || len(o.keys)%columns != 0 {
		return nil, fmt.Errorf("%d keys do not fill %d columns", len(o.keys), columns)
	}
	o.rows = len(o.keys) / columns

	keyRect, err := device.GetKeyImageRectangle()
	if err != nil {
		return nil, fmt.Errorf("querying key image size: %w", err)
	}
	o.keySize = keyRect.Dx()

	if device.GetTouchStripSupported() {
		if rect, err := device.GetTouchStripImageRectangle(); err == nil {
			o.stripRect = rect
		}
	}

	return o, nil
}

// Size reports the logical display size covered by the key grid.
func (o *Output) Size() (int, int) {
	return o.columns * o.keySize, o.rows * o.keySize
}

// Push slices the frame into key tiles and sends them to the device.
func (o *Output) Push(frame *image.RGBA) error {
	for i, key := range o.keys {
		tile := Tile(frame, i%o.columns, i/o.columns, o.keySize)
		if err := o.device.SetKeyImage(key, tile); err != nil {
			return fmt.Errorf("setting key %v image: %w", key, err)
		}
	}

	if !o.stripRect.Empty() {
		strip := image.NewRGBA(o.stripRect)
		draw.ApproxBiLinear.Scale(strip, o.stripRect, frame, frame.Bounds(), draw.Src, nil)
		if err := o.device.SetTouchStripImage(strip); err != nil {
			return fmt.Errorf("setting strip image: %w", err)
		}
	}

	return nil
}

// Tile extracts the square tile at grid position (col, row) from a frame.
// Tiles past the frame edge come back black.
func Tile(frame *image.RGBA, col, row, size int) *image.RGBA {
	tile := image.NewRGBA(image.Rect(0, 0, size, size))
	src := image.Rect(col*size, row*size, (col+1)*size, (row+1)*size)
	draw.Draw(tile, tile.Bounds(), frame, src.Min, draw.Src)
	return tile
}
