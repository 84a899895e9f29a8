package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"eventdriver/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the driver over HTTP (POST /events/a, /events/b)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			ctx := cmd.Context()
			d, closeAll, err := buildDriver(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeAll()

			httpapi.SetLogger(a.log)
			httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(a.cfg.CORSEnabled, a.cfg.CORSOrigins)
			httpapi.SetBaseContext(ctx)

			srv := &http.Server{Addr: a.cfg.Addr, Handler: httpapi.NewMux(d), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", a.cfg.Addr).Strs("clients", d.Clients()).Msg("eventdriver listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (overrides config)")
	return cmd
}
