package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
)

const (
	kindIncrease = event.Kind("IncreaseCounters")
	kindReset    = event.Kind("ResetCounters")
)

// counters is the reactive subscriber state of the counter scenarios.
// It is mutated only on the subscriber loop's goroutine; the mutex exists
// so the test goroutine can read it.
type counters struct {
	mu       sync.Mutex
	value1   int
	value2   int
	onChange chan struct{}
}

func (c *counters) get() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value1, c.value2
}

func (c *counters) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.onChange:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never handled the event")
	}
}

// buildCounterRuntime wires an externally triggered publisher and a
// counting subscriber.
func buildCounterRuntime(t *testing.T, trigger chan event.Kind, c *counters) *Runtime {
	t.Helper()

	b := NewBuilder()
	if err := b.RegisterEvent(kindIncrease, event.Schema{"value1": event.FieldInt, "value2": event.FieldInt}); err != nil {
		t.Fatalf("RegisterEvent() failed: %v", err)
	}
	if err := b.RegisterEvent(kindReset, nil); err != nil {
		t.Fatalf("RegisterEvent() failed: %v", err)
	}

	b.AddLoop(loop.Config{
		Name:      "Publisher",
		Kind:      loop.Active,
		Publishes: []event.Kind{kindIncrease, kindReset},
		Step: func(ctx *loop.Context) {
			kind, ok := <-trigger
			if !ok {
				time.Sleep(time.Millisecond)
				return
			}
			switch kind {
			case kindIncrease:
				ctx.Publish(kindIncrease, map[string]any{"value1": 1, "value2": 2})
			case kindReset:
				ctx.Publish(kindReset, nil)
			}
		},
	})

	b.AddLoop(loop.Config{
		Name:       "Subscriber",
		Kind:       loop.Reactive,
		Subscribes: []event.Kind{kindIncrease, kindReset},
		Handlers: map[event.Kind]loop.HandlerFunc{
			kindIncrease: func(ctx *loop.Context, ev event.Event) {
				fields := ev.Fields()
				c.mu.Lock()
				c.value1 += fields["value1"].(int)
				c.value2 += fields["value2"].(int)
				c.mu.Unlock()
				c.onChange <- struct{}{}
			},
			kindReset: func(ctx *loop.Context, ev event.Event) {
				c.mu.Lock()
				c.value1, c.value2 = 0, 0
				c.mu.Unlock()
				c.onChange <- struct{}{}
			},
		},
	})

	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return rt
}

func TestRuntime_CounterScenario(t *testing.T) {
	trigger := make(chan event.Kind)
	c := &counters{onChange: make(chan struct{}, 1)}
	rt := buildCounterRuntime(t, trigger, c)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	done, err := rt.RunAsync()
	if err != nil {
		t.Fatalf("RunAsync() failed: %v", err)
	}

	if v1, v2 := c.get(); v1 != 0 || v2 != 0 {
		t.Fatalf("expected counters (0,0), got (%d,%d)", v1, v2)
	}

	trigger <- kindIncrease
	c.wait(t)
	if v1, v2 := c.get(); v1 != 1 || v2 != 2 {
		t.Errorf("expected counters (1,2), got (%d,%d)", v1, v2)
	}

	trigger <- kindIncrease
	c.wait(t)
	if v1, v2 := c.get(); v1 != 2 || v2 != 4 {
		t.Errorf("expected counters (2,4), got (%d,%d)", v1, v2)
	}

	trigger <- kindReset
	c.wait(t)
	if v1, v2 := c.get(); v1 != 0 || v2 != 0 {
		t.Errorf("expected counters reset to (0,0), got (%d,%d)", v1, v2)
	}

	close(trigger)
	rt.RequestExit()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned %v after exit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.Wait(ctx); err != nil {
		t.Errorf("Wait() failed: %v", err)
	}
}

func TestRuntime_TwoConcurrentPublishers(t *testing.T) {
	const perPublisher = 10

	b := NewBuilder()
	if err := b.RegisterEvent("Ping", nil); err != nil {
		t.Fatalf("RegisterEvent() failed: %v", err)
	}

	for _, name := range []string{"Pub1", "Pub2"} {
		sent := 0
		b.AddLoop(loop.Config{
			Name:      name,
			Kind:      loop.Active,
			Publishes: []event.Kind{"Ping"},
			Step: func(ctx *loop.Context) {
				if sent < perPublisher {
					ctx.Publish("Ping", nil)
					sent++
					return
				}
				time.Sleep(time.Millisecond)
			},
		})
	}

	var received atomic.Int32
	complete := make(chan struct{})
	b.AddLoop(loop.Config{
		Name:       "Counter",
		Kind:       loop.Reactive,
		Subscribes: []event.Kind{"Ping"},
		Handlers: map[event.Kind]loop.HandlerFunc{
			"Ping": func(ctx *loop.Context, ev event.Event) {
				if received.Add(1) == perPublisher*2 {
					close(complete)
				}
			},
		},
	})

	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	done, err := rt.RunAsync()
	if err != nil {
		t.Fatalf("RunAsync() failed: %v", err)
	}

	select {
	case <-complete:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected %d events, got %d", perPublisher*2, received.Load())
	}

	// No duplicates may trickle in after the full count.
	time.Sleep(50 * time.Millisecond)
	if got := received.Load(); got != perPublisher*2 {
		t.Errorf("expected exactly %d deliveries, got %d", perPublisher*2, got)
	}

	rt.RequestExit()
	if err := <-done; err != nil {
		t.Errorf("Run() returned %v after exit", err)
	}
}

func TestRuntime_NoHandlerAfterExit(t *testing.T) {
	var handled atomic.Int32

	b := NewBuilder()
	if err := b.RegisterEvent("K", nil); err != nil {
		t.Fatalf("RegisterEvent() failed: %v", err)
	}
	b.AddLoop(loop.Config{
		Name:      "Pub",
		Kind:      loop.Active,
		Publishes: []event.Kind{"K"},
		Step: func(ctx *loop.Context) {
			ctx.Publish("K", nil)
		},
	})
	b.AddLoop(loop.Config{
		Name:       "Sub",
		Kind:       loop.Reactive,
		Subscribes: []event.Kind{"K"},
		Handlers: map[event.Kind]loop.HandlerFunc{
			"K": func(ctx *loop.Context, ev event.Event) { handled.Add(1) },
		},
	})

	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	done, err := rt.RunAsync()
	if err != nil {
		t.Fatalf("RunAsync() failed: %v", err)
	}

	rt.RequestExit()
	if err := <-done; err != nil {
		t.Fatalf("Run() returned %v after exit", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rt.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	// Once every loop has stopped the count must not move again.
	settled := handled.Load()
	time.Sleep(50 * time.Millisecond)
	if got := handled.Load(); got != settled {
		t.Errorf("handlers still running after shutdown: %d -> %d", settled, got)
	}
}

func TestRuntime_StartTwice(t *testing.T) {
	b := NewBuilder()
	b.AddLoop(loop.Config{
		Name: "A", Kind: loop.Active,
		Step: func(ctx *loop.Context) { time.Sleep(time.Millisecond) },
	})
	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := rt.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	done, _ := rt.RunAsync()
	rt.RequestExit()
	<-done
}

func TestRuntime_RunBeforeStart(t *testing.T) {
	b := NewBuilder()
	b.AddLoop(loop.Config{
		Name: "A", Kind: loop.Active,
		Step: func(ctx *loop.Context) {},
	})
	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if err := rt.Run(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Run(): expected ErrNotStarted, got %v", err)
	}
	if err := rt.Wait(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Wait(): expected ErrNotStarted, got %v", err)
	}
}

func TestRuntime_WaitTimeout(t *testing.T) {
	blocked := make(chan struct{})
	b := NewBuilder()
	b.AddLoop(loop.Config{
		Name: "Stuck", Kind: loop.Active,
		Step: func(ctx *loop.Context) {
			<-blocked // a step the runtime cannot interrupt
		},
	})
	rt, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	done, _ := rt.RunAsync()
	rt.RequestExit()
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rt.Wait(ctx); !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("expected ErrWaitTimeout, got %v", err)
	}
	close(blocked)
}

func TestRuntime_StatsCountDeliveries(t *testing.T) {
	trigger := make(chan event.Kind)
	c := &counters{onChange: make(chan struct{}, 1)}
	rt := buildCounterRuntime(t, trigger, c)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	done, _ := rt.RunAsync()

	trigger <- kindIncrease
	c.wait(t)

	close(trigger)
	rt.RequestExit()
	<-done

	stats := rt.Stats()
	if stats.Published != 1 {
		t.Errorf("expected 1 published, got %d", stats.Published)
	}
	if stats.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %d", stats.Delivered)
	}
}
