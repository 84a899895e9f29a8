package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"eventdriver/internal/common/fsutil"
	"eventdriver/internal/config"
	"eventdriver/internal/logging"
)

// defaultConfigPaths are tried in order when --config is not given.
var defaultConfigPaths = []string{"eventdriver.yaml", "eventdriver.yml", "eventdriver.toml", "eventdriver.json", "~/.config/eventdriver/config.yaml"}

// app carries state shared by subcommands after flag parsing.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	log        zerolog.Logger
	stderr     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "eventdriver",
		Short:         "Broadcast typed events to an ordered set of clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (.yaml/.yml/.json/.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")

	root.AddCommand(newEmitCmd(a), newDemoCmd(a), newServeCmd(a), newHostCmd(a))
	return root
}

func (a *app) loadConfig() error {
	path := a.configPath
	if path == "" {
		path = fsutil.FirstExisting(defaultConfigPaths...)
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if err := a.cfg.ApplyDefaults(); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.log = logging.New(a.cfg.LogLevel, a.cfg.LogFormat, a.stderr)
	if path != "" {
		a.log.Debug().Str("path", path).Int("clients", len(a.cfg.Clients)).Msg("config loaded")
	}
	return nil
}

func newEmitCmd(a *app) *cobra.Command {
	emit := &cobra.Command{
		Use:   "emit",
		Short: "Emit one event to the configured clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("emit requires a variant: a|b")
		},
	}
	emitA := &cobra.Command{
		Use:     "a <field_a1:int64> <field_a2:bool>",
		Short:   "Emit EventA",
		Example: "  eventdriver emit a 100 false",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a1, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("field_a1: %w", err)
			}
			a2, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("field_a2: %w", err)
			}
			d, closeAll, err := buildDriver(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeAll()
			return d.EmitEventA(cmd.Context(), a1, a2)
		},
	}
	emitB := &cobra.Command{
		Use:     "b <field_b1:float64> <field_b2:int32>",
		Short:   "Emit EventB",
		Example: "  eventdriver emit b 3.4 42",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b1, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("field_b1: %w", err)
			}
			b2, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("field_b2: %w", err)
			}
			d, closeAll, err := buildDriver(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeAll()
			return d.EmitEventB(cmd.Context(), b1, int32(b2))
		},
	}
	emit.AddCommand(emitA, emitB)
	return emit
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Emit EventA(100,false) then EventB(3.4,42) to two log clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			cfg.Clients = []config.ClientConfig{{Name: "client 1", Type: config.ClientLog}, {Name: "client 2", Type: config.ClientLog}}
			d, closeAll, err := buildDriver(cmd.Context(), cfg, a.log)
			if err != nil {
				return err
			}
			defer closeAll()
			if err := d.EmitEventA(cmd.Context(), 100, false); err != nil {
				return err
			}
			return d.EmitEventB(cmd.Context(), 3.4, 42)
		},
	}
}
