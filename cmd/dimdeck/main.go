// Command dimdeck runs a compositor on a Stream Deck and dims the display
// with a smooth fade after a period of inactivity, on system sleep, or on
// demand via the dials.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phinze/dimdeck/internal/compositor"
	"github.com/phinze/dimdeck/internal/config"
	"github.com/phinze/dimdeck/internal/content"
	"github.com/phinze/dimdeck/internal/dimmer"
	"github.com/phinze/dimdeck/internal/output/deck"
	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
	"rafaelmartins.com/p/streamdeck"
)

// deckColumns is the key grid width; the Stream Deck + lays its 8 keys out
// in 4 columns.
const deckColumns = 4

// eventKind identifies an input event routed into the render loop.
type eventKind int

const (
	eventKey eventKind = iota
	eventDial
	eventSleep
	eventWake
)

type event struct {
	kind  eventKind
	delta int8
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Config unavailable, using defaults: %v", err)
	}

	log.Println("=== dimdeck ===")
	log.Println("Press Ctrl+C to exit")

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal")
		cancel()
	}()

	// Forward sleep/wake transitions into the device loop
	activityCh := notifier.GetInstance().Start()
	powerCh := make(chan event, 2)
	go func() {
		for activity := range activityCh {
			ev := event{kind: eventSleep}
			if activity.Type == notifier.Awake {
				ev = event{kind: eventWake}
			}
			select {
			case powerCh <- ev:
			default:
			}
		}
	}()

	// Main device loop - wait for device, run, repeat on disconnect
	for {
		device := waitForDevice(ctx)
		if device == nil {
			// Context cancelled
			break
		}

		runWithDevice(ctx, device, cfg, powerCh)

		select {
		case <-ctx.Done():
			log.Println("Exiting...")
			return
		default:
			log.Println("Waiting for device reconnect...")
		}
	}
}

// waitForDevice polls for a Stream Deck device until one is available.
// Uses polling since macOS doesn't have a simple USB hotplug event API.
func waitForDevice(ctx context.Context) *streamdeck.Device {
	// First, try to get an already-connected device
	device, err := streamdeck.GetDevice("")
	if err != nil {
		log.Printf("GetDevice error: %v", err)
	} else {
		if err := device.Open(); err != nil {
			log.Printf("Device found but Open failed: %v", err)
		} else {
			return device
		}
	}

	log.Println("Waiting for device...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}

		device, err := streamdeck.GetDevice("")
		if err != nil {
			continue
		}
		if err := device.Open(); err != nil {
			log.Printf("Device found but Open failed: %v", err)
			continue
		}
		log.Println("Device connected!")
		return device
	}
}

// runWithDevice drives the compositor and dimmer on one device until
// disconnect or context cancel.
func runWithDevice(ctx context.Context, device *streamdeck.Device, cfg config.Config, powerCh <-chan event) {
	defer device.Close()

	log.Printf("Connected to: %s", device.GetModelName())
	device.SetBrightness(cfg.Brightness)

	out, err := deck.New(device, deckColumns)
	if err != nil {
		log.Printf("Device layout unsupported: %v", err)
		return
	}

	comp := compositor.New(out)
	scene := content.New()
	background := comp.NewContentLayer(0)

	// The compositor is the dimmer's whole environment: display geometry,
	// update sessions, and surface allocation.
	dim := dimmer.New(comp, comp, comp)
	defer dim.Release()

	// All dimmer access stays on this goroutine; device callbacks only
	// push events.
	events := make(chan event, 16)
	device.ForEachKey(func(key streamdeck.KeyID) error {
		return device.AddKeyHandler(key, func(d *streamdeck.Device, k *streamdeck.Key) error {
			select {
			case events <- event{kind: eventKey}:
			default:
			}
			return nil
		})
	})
	device.ForEachDial(func(dial streamdeck.DialID) error {
		device.AddDialRotateHandler(dial, func(d *streamdeck.Device, di *streamdeck.Dial, delta int8) error {
			select {
			case events <- event{kind: eventDial, delta: delta}:
			default:
			}
			return nil
		})
		return nil
	})

	errChan := make(chan error, 1)
	go func() {
		if err := device.Listen(errChan); err != nil {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	log.Printf("Ready! Dimming to %.2f after %v idle", cfg.DimAlpha, cfg.IdleTimeout())

	ticker := time.NewTicker(cfg.Tick())
	defer ticker.Stop()

	dimAlpha := cfg.DimAlpha
	lastInput := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			return

		case err := <-errChan:
			log.Printf("Device disconnected: %v", err)
			return

		case ev := <-events:
			comp.Open()
			switch ev.kind {
			case eventKey:
				lastInput = time.Now()
				dim.Dismiss(cfg.FadeOut())
			case eventDial:
				dimAlpha += float64(ev.delta) * 0.05
				if dimAlpha < 0.1 {
					dimAlpha = 0.1
				}
				if dimAlpha > 1 {
					dimAlpha = 1
				}
				if dim.IsDimming() {
					dim.Present(cfg.Layer, dimAlpha, 0)
				}
				log.Printf("Dim level now %.2f", dimAlpha)
			}
			if err := comp.Commit(); err != nil {
				log.Printf("Commit failed: %v", err)
			}

		case ev := <-powerCh:
			comp.Open()
			switch ev.kind {
			case eventSleep:
				log.Println("System sleep, dimming fully")
				dim.Present(cfg.Layer, 1, 0)
			case eventWake:
				log.Println("System wake, restoring")
				dim.JumpToEnd()
				dim.Dismiss(0)
				lastInput = time.Now()
			}
			if err := comp.Commit(); err != nil {
				log.Printf("Commit failed: %v", err)
			}

		case <-ticker.C:
			comp.Open()
			background.SetContent(scene.Render(comp.LogicalSize()))
			if !dim.IsDimming() && time.Since(lastInput) > cfg.IdleTimeout() {
				dim.Present(cfg.Layer, dimAlpha, cfg.FadeIn())
			}
			dim.Advance()
			if err := comp.Commit(); err != nil {
				log.Printf("Commit failed: %v", err)
			}
		}
	}
}
