package driver

import (
	"context"

	"github.com/rs/zerolog"

	"eventdriver/pkg/types"
)

// LogClient writes every event it receives as a structured log line.
type LogClient struct {
	name string
	log  zerolog.Logger
}

func NewLogClient(name string, l zerolog.Logger) *LogClient {
	return &LogClient{name: name, log: l.With().Str("client", name).Logger()}
}

func (c *LogClient) Name() string { return c.name }

func (c *LogClient) HandleEvent(_ context.Context, ev types.Event) error {
	z := c.log.Info().Str("kind", string(ev.Kind()))
	switch e := ev.(type) {
	case types.EventA:
		z = z.Int64("field_a1", e.FieldA1).Bool("field_a2", e.FieldA2)
	case types.EventB:
		z = z.Float64("field_b1", e.FieldB1).Int32("field_b2", e.FieldB2)
	}
	z.Msg("received")
	return nil
}
