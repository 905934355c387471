// Package term pushes composited frames to a terminal through tcell,
// mapping two vertically stacked pixels onto each cell with the upper
// half-block glyph.
package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// Output drives a tcell screen as a pixel display. Each terminal cell holds
// two pixels, so the logical height is twice the screen's row count.
type Output struct {
	screen tcell.Screen
}

// New creates an Output over an initialized screen.
func New(screen tcell.Screen) *Output {
	return &Output{screen: screen}
}

// Size reports the logical pixel size of the terminal.
func (o *Output) Size() (int, int) {
	w, h := o.screen.Size()
	return w, h * 2
}

// Push draws the frame onto the screen and makes it visible.
func (o *Output) Push(frame *image.RGBA) error {
	cols, rows := o.screen.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			upper := frame.RGBAAt(col, row*2)
			lower := frame.RGBAAt(col, row*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(upper.R), int32(upper.G), int32(upper.B))).
				Background(tcell.NewRGBColor(int32(lower.R), int32(lower.G), int32(lower.B)))
			o.screen.SetContent(col, row, '▀', nil, style)
		}
	}
	o.screen.Show()
	return nil
}
