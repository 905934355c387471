// Command dimterm shows the overlay dimmer fading over a rendered scene in
// the terminal. Keys: d dim, u undim, j jump to end, x release the overlay,
// p dump dimmer state to the log, q quit.
package main

import (
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/phinze/dimdeck/internal/compositor"
	"github.com/phinze/dimdeck/internal/config"
	"github.com/phinze/dimdeck/internal/content"
	"github.com/phinze/dimdeck/internal/dimmer"
	"github.com/phinze/dimdeck/internal/output/term"
)

func main() {
	// The screen owns the terminal; keep logs out of its way.
	logFile, err := os.Create("dimterm.log")
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Creating screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Initializing screen: %v", err)
	}
	defer screen.Fini()

	cfg := config.Default()

	comp := compositor.New(term.New(screen))
	scene := content.New()
	background := comp.NewContentLayer(0)

	dim := dimmer.New(comp, comp, comp)
	defer dim.Release()

	keys := make(chan rune, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok {
				switch key.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					keys <- 'q'
				case tcell.KeyRune:
					keys <- key.Rune()
				}
			}
		}
	}()

	ticker := time.NewTicker(cfg.Tick())
	defer ticker.Stop()

	for {
		select {
		case r := <-keys:
			comp.Open()
			switch r {
			case 'q':
				comp.Commit()
				return
			case 'd':
				dim.Present(cfg.Layer, cfg.DimAlpha, cfg.FadeIn())
			case 'u':
				dim.Dismiss(cfg.FadeOut())
			case 'j':
				dim.JumpToEnd()
			case 'x':
				dim.Release()
			case 'p':
				dim.Dump("", log.Writer())
			}
			if err := comp.Commit(); err != nil {
				log.Printf("Commit failed: %v", err)
			}

		case <-ticker.C:
			comp.Open()
			background.SetContent(scene.Render(comp.LogicalSize()))
			dim.Advance()
			if err := comp.Commit(); err != nil {
				log.Printf("Commit failed: %v", err)
			}
		}
	}
}
