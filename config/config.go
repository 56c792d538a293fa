package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
)

// File is the root of a declarative runtime description.
type File struct {
	Events []EventDef `yaml:"events" toml:"events"`
	Loops  []LoopDef  `yaml:"loops" toml:"loops"`
	Log    LogDef     `yaml:"log" toml:"log"`
}

// EventDef declares one event kind and its field schema.
type EventDef struct {
	Name   string            `yaml:"name" toml:"name"`
	Fields map[string]string `yaml:"fields" toml:"fields"`
}

// LoopDef declares one loop.
type LoopDef struct {
	Name       string         `yaml:"name" toml:"name"`
	Kind       string         `yaml:"kind" toml:"kind"`
	Publishes  []string       `yaml:"publishes" toml:"publishes"`
	Subscribes []string       `yaml:"subscribes" toml:"subscribes"`
	Script     string         `yaml:"script" toml:"script"`
	State      map[string]any `yaml:"state" toml:"state"`
}

// LogDef selects log destinations.
type LogDef struct {
	File       string `yaml:"file" toml:"file"`
	Level      string `yaml:"level" toml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	Console    *bool  `yaml:"console" toml:"console"`
}

// LoopKind parses the declared discipline.
func (l LoopDef) LoopKind() (loop.Kind, bool) {
	return loop.ParseKind(strings.ToLower(l.Kind))
}

// Load reads and parses the file at path, choosing the format by
// extension (.yaml/.yml or .toml).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(path, data)
	case ".toml":
		return parseTOML(path, data)
	default:
		return nil, fmt.Errorf("config %s: %w", path, ErrUnknownFormat)
	}
}

func parseYAML(source string, data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	return &f, nil
}

func parseTOML(source string, data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	return &f, nil
}

// Validate applies every structural check that does not require loading
// scripts: names present and unique, kinds known, publish/subscribe sets
// referring to declared events, schemas well-formed.
func (f *File) Validate() error {
	if len(f.Loops) == 0 {
		return fmt.Errorf("%w: no loops declared", ErrInvalid)
	}

	kinds := make(map[string]struct{}, len(f.Events))
	for _, ev := range f.Events {
		if ev.Name == "" {
			return fmt.Errorf("%w: event with empty name", ErrInvalid)
		}
		if _, dup := kinds[ev.Name]; dup {
			return fmt.Errorf("%w: duplicate event %q", ErrInvalid, ev.Name)
		}
		kinds[ev.Name] = struct{}{}
		for field, typeName := range ev.Fields {
			if _, err := event.ParseFieldType(typeName); err != nil {
				return fmt.Errorf("%w: event %q field %q: %v", ErrInvalid, ev.Name, field, err)
			}
		}
	}

	names := make(map[string]struct{}, len(f.Loops))
	for _, l := range f.Loops {
		if l.Name == "" {
			return fmt.Errorf("%w: loop with empty name", ErrInvalid)
		}
		if _, dup := names[l.Name]; dup {
			return fmt.Errorf("%w: duplicate loop %q", ErrInvalid, l.Name)
		}
		names[l.Name] = struct{}{}

		if _, ok := l.LoopKind(); !ok {
			return fmt.Errorf("%w: loop %q has unknown kind %q", ErrInvalid, l.Name, l.Kind)
		}
		if l.Script == "" {
			return fmt.Errorf("%w: loop %q has no script", ErrInvalid, l.Name)
		}
		for _, k := range l.Publishes {
			if _, ok := kinds[k]; !ok {
				return fmt.Errorf("%w: loop %q publishes undeclared event %q", ErrInvalid, l.Name, k)
			}
		}
		for _, k := range l.Subscribes {
			if _, ok := kinds[k]; !ok {
				return fmt.Errorf("%w: loop %q subscribes to undeclared event %q", ErrInvalid, l.Name, k)
			}
		}
	}
	return nil
}

// Registry builds an event registry from the declared events.
func (f *File) Registry() (*event.Registry, error) {
	reg := event.NewRegistry()
	for _, ev := range f.Events {
		schema := make(event.Schema, len(ev.Fields))
		for field, typeName := range ev.Fields {
			ft, err := event.ParseFieldType(typeName)
			if err != nil {
				return nil, fmt.Errorf("event %q field %q: %w", ev.Name, field, err)
			}
			schema[field] = ft
		}
		if err := reg.Register(event.Kind(ev.Name), schema); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoopResolver turns one declared loop into its handlers and step. The
// script package provides a Lua-backed resolver; tests provide fakes.
type LoopResolver interface {
	Resolve(def LoopDef, reg *event.Registry) (map[event.Kind]loop.HandlerFunc, loop.StepFunc, error)
}

// BuildLoops materializes every declared loop through the resolver, ready
// to be added to a runtime builder.
func (f *File) BuildLoops(resolver LoopResolver, reg *event.Registry) ([]loop.Config, error) {
	out := make([]loop.Config, 0, len(f.Loops))
	for _, def := range f.Loops {
		kind, ok := def.LoopKind()
		if !ok {
			return nil, fmt.Errorf("%w: loop %q has unknown kind %q", ErrInvalid, def.Name, def.Kind)
		}
		handlers, step, err := resolver.Resolve(def, reg)
		if err != nil {
			return nil, fmt.Errorf("loop %q: %w", def.Name, err)
		}
		cfg := loop.Config{
			Name:     def.Name,
			Kind:     kind,
			Handlers: handlers,
			Step:     step,
		}
		for _, k := range def.Publishes {
			cfg.Publishes = append(cfg.Publishes, event.Kind(k))
		}
		for _, k := range def.Subscribes {
			cfg.Subscribes = append(cfg.Subscribes, event.Kind(k))
		}
		out = append(out, cfg)
	}
	return out, nil
}
