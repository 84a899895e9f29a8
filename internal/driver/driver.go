package driver

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"eventdriver/pkg/types"
)

// Driver owns an ordered client list and fans events out to it.
type Driver struct {
	clients []Client
	names   []string
	policy  Policy
	log     zerolog.Logger
}

// New constructs a fail-fast Driver over clients.
func New(clients []Client) *Driver {
	return NewWithConfig(Config{Clients: clients})
}

// NewWithConfig constructs a Driver from Config. The client slice is copied
// and nil entries are dropped; the list cannot change afterwards.
func NewWithConfig(cfg Config) *Driver {
	d := &Driver{policy: cfg.Policy, log: zerolog.Nop()}
	if cfg.Logger != nil {
		d.log = *cfg.Logger
	}
	for _, c := range cfg.Clients {
		if c == nil {
			continue
		}
		d.clients = append(d.clients, c)
		d.names = append(d.names, clientName(c))
	}
	return d
}

// Len returns the number of registered clients.
func (d *Driver) Len() int { return len(d.clients) }

// Clients returns client names in dispatch order.
func (d *Driver) Clients() []string { return append([]string(nil), d.names...) }

// Policy returns the failure policy in effect.
func (d *Driver) Policy() Policy { return d.policy }

// EmitEventA builds an EventA and dispatches it.
func (d *Driver) EmitEventA(ctx context.Context, fieldA1 int64, fieldA2 bool) error {
	return d.Emit(ctx, types.EventA{FieldA1: fieldA1, FieldA2: fieldA2})
}

// EmitEventB builds an EventB and dispatches it.
func (d *Driver) EmitEventB(ctx context.Context, fieldB1 float64, fieldB2 int32) error {
	return d.Emit(ctx, types.EventB{FieldB1: fieldB1, FieldB2: fieldB2})
}

// Emit delivers ev to every client in registration order. It returns once the
// last invoked handler has returned.
func (d *Driver) Emit(ctx context.Context, ev types.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	kind := ev.Kind()
	start := time.Now()
	dispatchEvents.WithLabelValues(string(kind)).Inc()
	defer func() {
		dispatchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()
	d.log.Debug().Str("kind", string(kind)).Int("clients", len(d.clients)).Msg("dispatch start")

	var failures []*HandlerError
	for i, c := range d.clients {
		err := d.invoke(ctx, c, ev)
		if err == nil {
			observeDelivery(kind, outcomeOK)
			continue
		}
		he := &HandlerError{Index: i, Client: d.names[i], Kind: kind, Err: err}
		observeDelivery(kind, outcomeFor(err))
		d.log.Warn().Err(err).Str("kind", string(kind)).Int("index", i).Str("client", he.Client).
			Str("policy", d.policy.String()).Msg("handler failed")
		if d.policy == FailFast {
			return he
		}
		failures = append(failures, he)
	}
	if len(failures) > 0 {
		return &DispatchError{Kind: kind, Failures: failures}
	}
	d.log.Debug().Str("kind", string(kind)).Dur("dur", time.Since(start)).Msg("dispatch done")
	return nil
}

// invoke runs one handler, converting a panic into a *PanicError.
func (d *Driver) invoke(ctx context.Context, c Client, ev types.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return c.HandleEvent(ctx, ev)
}
