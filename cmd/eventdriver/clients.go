package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"eventdriver/internal/boundary"
	"eventdriver/internal/common/fsutil"
	"eventdriver/internal/config"
	"eventdriver/internal/driver"
)

// buildDriver constructs the configured clients in order and wraps them in a
// Driver. The returned func closes any host processes that were started.
func buildDriver(ctx context.Context, cfg config.Config, log zerolog.Logger) (*driver.Driver, func(), error) {
	policy, err := driver.ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, nil, err
	}
	var (
		clients []driver.Client
		procs   []*boundary.ProcessClient
	)
	closeAll := func() {
		for _, p := range procs {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Str("client", p.Name()).Msg("close host")
			}
		}
	}
	for _, cc := range cfg.Clients {
		c, err := buildClient(ctx, cc, log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("client %q: %w", cc.Name, err)
		}
		if p, ok := c.(*boundary.ProcessClient); ok {
			procs = append(procs, p)
		}
		clients = append(clients, c)
	}
	d := driver.NewWithConfig(driver.Config{Clients: clients, Policy: policy, Logger: &log})
	log.Debug().Strs("clients", d.Clients()).Str("policy", policy.String()).Msg("driver ready")
	return d, closeAll, nil
}

func buildClient(ctx context.Context, cc config.ClientConfig, log zerolog.Logger) (driver.Client, error) {
	switch cc.Type {
	case config.ClientLog, "":
		return driver.NewLogClient(cc.Name, log), nil
	case config.ClientRecorder:
		return driver.NewRecorder(cc.Name), nil
	case config.ClientStub:
		return namedStub{name: cc.Name}, nil
	case config.ClientProcess:
		bin, err := fsutil.ResolveCommand(cc.Command)
		if err != nil {
			return nil, err
		}
		p, err := boundary.Start(ctx, boundary.ProcessConfig{
			Name:         cc.Name,
			Command:      bin,
			Args:         cc.Args,
			Env:          cc.Env,
			Dir:          cc.Dir,
			ReplyTimeout: cc.ReplyTimeout(),
			StopTimeout:  cc.StopTimeout(),
			Logger:       &log,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.New("unknown client type " + cc.Type)
	}
}

// namedStub is the default-reject client with a configured name.
type namedStub struct {
	driver.Base
	name string
}

func (s namedStub) Name() string { return s.name }
