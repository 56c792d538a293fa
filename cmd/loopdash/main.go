// Command loopdash is a small terminal dashboard driven entirely by the
// loop runtime.
//
// An active Input loop blocks in the terminal's event poll and publishes a
// KeyPressed event per keystroke. An active Ticker loop publishes a Tick
// once per second. A reactive Render loop owns the counters and redraws
// the screen when either event arrives. Escape or q requests global exit.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
	"github.com/dshills/loopkit/logging"
	"github.com/dshills/loopkit/runtime"
)

const (
	kindKey  = event.Kind("KeyPressed")
	kindTick = event.Kind("Tick")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}

	log := logging.New(logging.Config{File: "loopdash.log", Level: "info"})

	b := runtime.NewBuilder(runtime.WithLogger(log))
	if err := b.RegisterEvent(kindKey, event.Schema{"key": event.FieldString}); err != nil {
		return err
	}
	if err := b.RegisterEvent(kindTick, nil); err != nil {
		return err
	}

	b.AddLoop(loop.Config{
		Name:      "Input",
		Kind:      loop.Active,
		Publishes: []event.Kind{kindKey},
		Step: func(ctx *loop.Context) {
			ev := screen.PollEvent()
			if ev == nil {
				// Screen finalized; idle until the exit signal lands.
				time.Sleep(10 * time.Millisecond)
				return
			}
			key, quit := describeKey(ev)
			switch {
			case quit:
				ctx.RequestExit()
			case key != "":
				ctx.Publish(kindKey, map[string]any{"key": key})
			}
		},
	})

	b.AddLoop(loop.Config{
		Name:      "Ticker",
		Kind:      loop.Active,
		Publishes: []event.Kind{kindTick},
		Step: func(ctx *loop.Context) {
			time.Sleep(time.Second)
			ctx.Publish(kindTick, nil)
		},
	})

	var (
		keyCount  int
		tickCount int
		lastKey   string
	)
	draw := func() {
		screen.Clear()
		drawText(screen, 0, 0, "loopdash - press q or ESC to quit")
		drawText(screen, 0, 2, fmt.Sprintf("uptime ticks : %d", tickCount))
		drawText(screen, 0, 3, fmt.Sprintf("keys pressed : %d", keyCount))
		drawText(screen, 0, 4, fmt.Sprintf("last key     : %s", lastKey))
		screen.Show()
	}
	b.AddLoop(loop.Config{
		Name:       "Render",
		Kind:       loop.Reactive,
		Subscribes: []event.Kind{kindKey, kindTick},
		Handlers: map[event.Kind]loop.HandlerFunc{
			kindKey: func(ctx *loop.Context, ev event.Event) {
				keyCount++
				lastKey, _ = ev.Fields()["key"].(string)
				draw()
			},
			kindTick: func(ctx *loop.Context, ev event.Event) {
				tickCount++
				draw()
			},
		},
	})

	rt, err := b.Build()
	if err != nil {
		screen.Fini()
		return err
	}
	if err := rt.Start(); err != nil {
		screen.Fini()
		return err
	}

	runErr := rt.Run()

	// Finalizing the screen unblocks the input loop's PollEvent.
	screen.Fini()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = rt.Wait(ctx)
	return runErr
}

// describeKey names a key event, and reports whether it requests quitting.
func describeKey(ev tcell.Event) (string, bool) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return "", false
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return "", true
	case tcell.KeyRune:
		if key.Rune() == 'q' {
			return "", true
		}
		return string(key.Rune()), false
	default:
		return key.Name(), false
	}
}

// drawText writes a line of text with the default style.
func drawText(s tcell.Screen, x, y int, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
