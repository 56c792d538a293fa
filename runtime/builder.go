package runtime

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/loopkit/dispatch"
	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
	"github.com/dshills/loopkit/mailbox"
)

// Builder accumulates the static tables and produces a wired, not yet
// started Runtime. A Builder is single-use.
type Builder struct {
	registry *event.Registry
	loops    []loop.Config
	log      zerolog.Logger
	built    bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger shared by the dispatcher and every loop.
// The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// WithRegistry supplies a pre-populated event registry, as produced by the
// config package. The default is an empty registry filled via RegisterEvent.
func WithRegistry(reg *event.Registry) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		registry: event.NewRegistry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterEvent adds an event kind to the runtime's registry.
func (b *Builder) RegisterEvent(name event.Kind, schema event.Schema) error {
	return b.registry.Register(name, schema)
}

// AddLoop declares one loop. Validation is deferred to Build so that loops
// and events may be added in any order.
func (b *Builder) AddLoop(cfg loop.Config) {
	b.loops = append(b.loops, cfg)
}

// Build validates the configuration, freezes the kind set, and wires
// mailboxes, routing table, dispatcher, and loop runners. No goroutine is
// started; call Start on the returned Runtime.
func (b *Builder) Build() (*Runtime, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if len(b.loops) == 0 {
		return nil, ErrNoLoops
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	b.built = true
	b.registry.Freeze()

	inbox := mailbox.New()

	routes := make(map[event.Kind][]dispatch.Subscriber)
	all := make([]dispatch.Subscriber, 0, len(b.loops))
	runners := make([]*loop.Runner, 0, len(b.loops))

	for _, cfg := range b.loops {
		loopBox := mailbox.New()
		sub := dispatch.Subscriber{Loop: cfg.Name, Producer: loopBox.Producer()}
		all = append(all, sub)
		for _, kind := range cfg.Subscribes {
			routes[kind] = append(routes[kind], sub)
		}

		stopping := new(atomic.Bool)
		ctx := loop.NewContext(cfg.Name, inbox.Producer(), cfg.Publishes, stopping)
		runners = append(runners, loop.NewRunner(cfg, loopBox, ctx, stopping, b.log))
	}

	table := dispatch.NewTable(routes, all)

	return &Runtime{
		registry:   b.registry,
		dispatcher: dispatch.New(inbox, table, b.log),
		table:      table,
		runners:    runners,
		control:    inbox.Producer(),
		log:        b.log,
	}, nil
}

// validate applies every construction-time check from the configuration
// error taxonomy.
func (b *Builder) validate() error {
	seen := make(map[string]struct{}, len(b.loops))

	for _, cfg := range b.loops {
		if cfg.Name == "" {
			return &ConfigError{Reason: "loop name cannot be empty"}
		}
		if _, dup := seen[cfg.Name]; dup {
			return &ConfigError{Loop: cfg.Name, Reason: "duplicate loop name"}
		}
		seen[cfg.Name] = struct{}{}

		switch cfg.Kind {
		case loop.Active:
			if cfg.Step == nil {
				return &ConfigError{Loop: cfg.Name, Reason: "active loop has no step function"}
			}
		case loop.Reactive:
			if cfg.Step != nil {
				return &ConfigError{Loop: cfg.Name, Reason: "reactive loop cannot have a step function"}
			}
			if len(cfg.Subscribes) == 0 {
				return &ConfigError{Loop: cfg.Name, Reason: "reactive loop subscribes to nothing and can never run"}
			}
		default:
			return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("unknown loop kind %d", cfg.Kind)}
		}

		for _, kind := range cfg.Publishes {
			if !b.registry.Contains(kind) {
				return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("publishes unregistered event kind %q", kind)}
			}
		}

		subscribed := make(map[event.Kind]struct{}, len(cfg.Subscribes))
		for _, kind := range cfg.Subscribes {
			if !b.registry.Contains(kind) {
				return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("subscribes to unregistered event kind %q", kind)}
			}
			if _, dup := subscribed[kind]; dup {
				return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("duplicate subscription to %q", kind)}
			}
			subscribed[kind] = struct{}{}
			if cfg.Handlers[kind] == nil {
				return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("no handler for subscribed event kind %q", kind)}
			}
		}
		for kind := range cfg.Handlers {
			if _, ok := subscribed[kind]; !ok {
				return &ConfigError{Loop: cfg.Name, Reason: fmt.Sprintf("handler for %q without a matching subscription", kind)}
			}
		}
	}
	return nil
}
