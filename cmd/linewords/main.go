// Command linewords demonstrates the loop runtime with plain Go loops.
//
// An active ReadStdin loop blocks on standard input and publishes a
// LineReceived event per line. An active TimerPrinter loop prints the
// seconds since the last line once per second, resetting on LineReceived.
// A reactive PrintStdout loop prints each line and republishes its words;
// a reactive PrintWords loop prints each word. EOF on stdin requests a
// global exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
	"github.com/dshills/loopkit/logging"
	"github.com/dshills/loopkit/runtime"
)

const (
	kindLine = event.Kind("LineReceived")
	kindWord = event.Kind("WordReceived")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logging.New(logging.Config{File: "linewords.log", Level: "debug"})

	b := runtime.NewBuilder(runtime.WithLogger(log))
	if err := b.RegisterEvent(kindLine, event.Schema{"line": event.FieldString}); err != nil {
		return err
	}
	if err := b.RegisterEvent(kindWord, event.Schema{"word": event.FieldString}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	b.AddLoop(loop.Config{
		Name:      "ReadStdin",
		Kind:      loop.Active,
		Publishes: []event.Kind{kindLine},
		Step: func(ctx *loop.Context) {
			if !scanner.Scan() {
				ctx.RequestExit()
				// EOF; idle until the exit signal lands.
				time.Sleep(10 * time.Millisecond)
				return
			}
			ctx.Publish(kindLine, map[string]any{"line": scanner.Text()})
		},
	})

	secondsSinceLine := 0
	b.AddLoop(loop.Config{
		Name:       "TimerPrinter",
		Kind:       loop.Active,
		Subscribes: []event.Kind{kindLine},
		Handlers: map[event.Kind]loop.HandlerFunc{
			kindLine: func(ctx *loop.Context, ev event.Event) {
				secondsSinceLine = 0
			},
		},
		Step: func(ctx *loop.Context) {
			fmt.Printf("[Timer] Seconds since last line: %d\n", secondsSinceLine)
			secondsSinceLine++
			time.Sleep(time.Second)
		},
	})

	b.AddLoop(loop.Config{
		Name:       "PrintStdout",
		Kind:       loop.Reactive,
		Publishes:  []event.Kind{kindWord},
		Subscribes: []event.Kind{kindLine},
		Handlers: map[event.Kind]loop.HandlerFunc{
			kindLine: func(ctx *loop.Context, ev event.Event) {
				line, _ := ev.Fields()["line"].(string)
				fmt.Printf("[Line] Received line %q\n", line)
				for _, word := range strings.Fields(line) {
					ctx.Publish(kindWord, map[string]any{"word": word})
				}
			},
		},
	})

	b.AddLoop(loop.Config{
		Name:       "PrintWords",
		Kind:       loop.Reactive,
		Subscribes: []event.Kind{kindWord},
		Handlers: map[event.Kind]loop.HandlerFunc{
			kindWord: func(ctx *loop.Context, ev event.Event) {
				word, _ := ev.Fields()["word"].(string)
				fmt.Printf("[Word] Received word %q\n", word)
			},
		},
	})

	rt, err := b.Build()
	if err != nil {
		return err
	}
	if err := rt.Start(); err != nil {
		return err
	}

	fmt.Println("Send me text and I will notify the other loops. Ctrl-D exits.")
	if err := rt.Run(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rt.Wait(ctx)
	return nil
}
