// Package content renders the background scene the overlay dims: a clock,
// a status line, and a lamp icon.
package content

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// lampSVG is the scene icon. currentColor is replaced at render time.
const lampSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">
  <path fill="currentColor" d="M12 2a7 7 0 0 0-4 12.7V17a1 1 0 0 0 1 1h6a1 1 0 0 0 1-1v-2.3A7 7 0 0 0 12 2z"/>
  <rect fill="currentColor" x="9" y="19" width="6" height="2" rx="1"/>
</svg>`

var (
	colorBackground = color.RGBA{25, 25, 25, 255}
	colorLamp       = color.RGBA{255, 200, 60, 255}
	colorClock      = color.RGBA{255, 255, 255, 255}
	colorStatus     = color.RGBA{150, 150, 150, 255}
)

// Renderer draws scene frames sized to the display.
type Renderer struct {
	face font.Face
	now  func() time.Time
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		face: basicfont.Face7x13,
		now:  time.Now,
	}
}

// Render produces one frame of the scene at the given size.
func (r *Renderer) Render(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorBackground}, image.Point{}, draw.Src)

	iconSize := height
	if width/3 < iconSize {
		iconSize = width / 3
	}
	if iconSize > 0 {
		icon := renderSVGIcon(lampSVG, iconSize, colorLamp)
		iconRect := image.Rect(0, (height-iconSize)/2, iconSize, (height-iconSize)/2+iconSize)
		draw.Draw(img, iconRect, icon, image.Point{}, draw.Over)
	}

	now := r.now()
	textX := iconSize + 8
	r.drawText(img, now.Format("15:04:05"), textX, height/2-2, colorClock)
	r.drawText(img, now.Format("Mon Jan 2"), textX, height/2+12, colorStatus)

	return img
}

// renderSVGIcon rasterizes an SVG string at the given size and color.
func renderSVGIcon(svgContent string, size int, iconColor color.Color) image.Image {
	cr, cg, cb, _ := iconColor.RGBA()
	hexColor := fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8)
	svgContent = strings.ReplaceAll(svgContent, "currentColor", hexColor)

	icon, err := oksvg.ReadIconStream(strings.NewReader(svgContent))
	if err != nil {
		log.Printf("content: parsing SVG: %v", err)
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	icon.SetTarget(0, 0, float64(size), float64(size))

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	return img
}

// drawText draws a single line of text at the given baseline position.
func (r *Renderer) drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
