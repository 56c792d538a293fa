package script

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/loopkit/config"
	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
)

// Resolver builds Lua-backed handlers and steps for configured loops. It
// implements config.LoopResolver.
type Resolver struct {
	// Dir is the directory script paths are resolved against.
	Dir string

	// Log receives script-level errors and the script log() output.
	Log zerolog.Logger
}

// Resolve loads the loop's script, checks it defines everything the
// declaration requires, and returns its handlers and step.
func (r *Resolver) Resolve(def config.LoopDef, reg *event.Registry) (map[event.Kind]loop.HandlerFunc, loop.StepFunc, error) {
	kind, ok := def.LoopKind()
	if !ok {
		return nil, nil, fmt.Errorf("loop %q has unknown kind %q", def.Name, def.Kind)
	}

	path := def.Script
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}

	s, err := newLoopScript(path, def, reg, r.Log)
	if err != nil {
		return nil, nil, err
	}

	handlers := make(map[event.Kind]loop.HandlerFunc, len(def.Subscribes))
	for _, name := range def.Subscribes {
		handlers[event.Kind(name)] = s.handler(event.Kind(name))
	}

	var step loop.StepFunc
	if kind == loop.Active {
		if s.stepFn == nil {
			return nil, nil, &MissingFunctionError{Script: path, Function: "step"}
		}
		step = s.step
	}
	return handlers, step, nil
}

// loopScript is one loop's interpreter state. All fields are owned by the
// loop goroutine once the runtime starts.
type loopScript struct {
	L        *lua.LState
	path     string
	name     string
	registry *event.Registry
	log      zerolog.Logger

	handlerFns map[event.Kind]*lua.LFunction
	stepFn     *lua.LFunction

	// ctx is the loop context of the current invocation, targeted by the
	// publish/request_exit/stopping globals.
	ctx *loop.Context

	// stdin backs the read_line global, created on first use.
	stdin *bufio.Scanner

	publishable map[event.Kind]struct{}
}

// newLoopScript creates the sandboxed state, installs the runtime globals,
// executes the script file, and resolves the required functions.
func newLoopScript(path string, def config.LoopDef, reg *event.Registry, log zerolog.Logger) (*loopScript, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	s := &loopScript{
		L:           L,
		path:        path,
		name:        def.Name,
		registry:    reg,
		log:         log.With().Str("script", filepath.Base(path)).Str("loop", def.Name).Logger(),
		handlerFns:  make(map[event.Kind]*lua.LFunction),
		publishable: make(map[event.Kind]struct{}, len(def.Publishes)),
	}
	for _, k := range def.Publishes {
		s.publishable[event.Kind(k)] = struct{}{}
	}

	s.installGlobals(def.State)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}

	for _, name := range def.Subscribes {
		fnName := luaFuncName(name)
		fn, err := s.global(fnName)
		if err != nil {
			L.Close()
			return nil, err
		}
		s.handlerFns[event.Kind(name)] = fn
	}

	if fn := L.GetGlobal("step"); fn != lua.LNil {
		lf, ok := fn.(*lua.LFunction)
		if !ok {
			L.Close()
			return nil, fmt.Errorf("script %s global %q: %w", path, "step", ErrNotFunction)
		}
		s.stepFn = lf
	}
	return s, nil
}

// openSafeLibraries opens the base, table, string, and math libraries.
// io, os, debug, and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installGlobals wires the loop-facing API and seeds the state table.
func (s *loopScript) installGlobals(initial map[string]any) {
	L := s.L

	state := L.NewTable()
	for k, v := range initial {
		state.RawSetString(k, toLua(L, v))
	}
	L.SetGlobal("state", state)

	L.SetGlobal("publish", L.NewFunction(func(L *lua.LState) int {
		kind := event.Kind(L.CheckString(1))
		var fields map[string]any
		if L.GetTop() >= 2 {
			converted, ok := fromLua(L.CheckTable(2)).(map[string]any)
			if !ok {
				L.RaiseError("publish %q: fields must be a table of named values", kind)
				return 0
			}
			fields = converted
		} else {
			fields = map[string]any{}
		}
		if _, ok := s.publishable[kind]; !ok {
			L.RaiseError("loop %q publishes undeclared event kind %q", s.name, kind)
			return 0
		}
		ev := event.Event{Kind: kind, Payload: fields}
		if err := s.registry.Validate(ev); err != nil {
			L.RaiseError("publish %q: %s", kind, err.Error())
			return 0
		}
		s.ctx.Publish(kind, fields)
		return 0
	}))

	L.SetGlobal("request_exit", L.NewFunction(func(L *lua.LState) int {
		s.ctx.RequestExit()
		return 0
	}))

	L.SetGlobal("stopping", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(s.ctx.Stopping()))
		return 1
	}))

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		s.log.Info().Msg(L.CheckString(1))
		return 0
	}))

	// io and os stay closed; scripted loops get narrow replacements for
	// the two things the examples need.
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		time.Sleep(time.Duration(L.CheckNumber(1)) * time.Millisecond)
		return 0
	}))

	L.SetGlobal("read_line", L.NewFunction(func(L *lua.LState) int {
		if s.stdin == nil {
			s.stdin = bufio.NewScanner(os.Stdin)
		}
		if !s.stdin.Scan() {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(s.stdin.Text()))
		return 1
	}))
}

// global fetches a required function global.
func (s *loopScript) global(name string) (*lua.LFunction, error) {
	v := s.L.GetGlobal(name)
	if v == lua.LNil {
		return nil, &MissingFunctionError{Script: s.path, Function: name}
	}
	fn, ok := v.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("script %s global %q: %w", s.path, name, ErrNotFunction)
	}
	return fn, nil
}

// handler adapts one subscribed kind's Lua function to a loop handler.
func (s *loopScript) handler(kind event.Kind) loop.HandlerFunc {
	fn := func(ctx *loop.Context, ev event.Event) {
		s.ctx = ctx
		if err := s.call(s.handlerFns[kind], s.eventTable(ev)); err != nil {
			s.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("handler failed")
		}
	}
	return fn
}

// step adapts the script's step function to a loop step.
func (s *loopScript) step(ctx *loop.Context) {
	s.ctx = ctx
	if err := s.call(s.stepFn); err != nil {
		s.log.Error().Err(err).Msg("step failed")
	}
}

// call invokes a Lua function with protected execution.
func (s *loopScript) call(fn *lua.LFunction, args ...lua.LValue) error {
	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

// eventTable converts an event to the table handed to handlers:
// { kind, source, id, fields = {...} }.
func (s *loopScript) eventTable(ev event.Event) lua.LValue {
	L := s.L
	t := L.NewTable()
	t.RawSetString("kind", lua.LString(ev.Kind))
	t.RawSetString("source", lua.LString(ev.Meta.Source))
	t.RawSetString("id", lua.LString(ev.Meta.ID))

	fields := L.NewTable()
	for k, v := range ev.Fields() {
		fields.RawSetString(k, toLua(L, v))
	}
	t.RawSetString("fields", fields)
	return t
}
