package driver

import (
	"context"
	"fmt"

	"eventdriver/pkg/types"
)

// Client reacts to events. HandleEvent must not retain ev beyond the call.
type Client interface {
	HandleEvent(ctx context.Context, ev types.Event) error
}

// Named is implemented by clients that want a stable label in logs and errors.
type Named interface {
	Name() string
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, ev types.Event) error

func (f ClientFunc) HandleEvent(ctx context.Context, ev types.Event) error { return f(ctx, ev) }

// Base is the default-reject client. Embed it and shadow HandleEvent; calling
// the base method always fails with ErrNotImplemented.
type Base struct{}

func (Base) HandleEvent(context.Context, types.Event) error { return ErrNotImplemented }

// clientName returns the client's Name, or its dynamic type when it has none.
func clientName(c Client) string {
	if n, ok := c.(Named); ok {
		if s := n.Name(); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%T", c)
}
