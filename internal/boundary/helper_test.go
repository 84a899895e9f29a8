package boundary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

const helperEnv = "EVENTDRIVER_BOUNDARY_HELPER"

// TestMain lets the test binary double as a host process: when helperEnv is
// set it serves the protocol on stdin/stdout instead of running tests.
func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(runHelper(mode))
	}
	os.Exit(m.Run())
}

func runHelper(mode string) int {
	ctx := context.Background()
	var h driver.Client
	switch mode {
	case "ok":
		h = driver.ClientFunc(func(context.Context, types.Event) error { return nil })
	case "reflect":
		h = driver.ClientFunc(func(_ context.Context, ev types.Event) error { return errors.New(fmt.Sprint(ev)) })
	case "stub":
		h = nil
	case "garbage":
		fmt.Fprintln(os.Stdout, "hello from host")
		h = driver.ClientFunc(func(context.Context, types.Event) error { return nil })
	case "slow":
		h = driver.ClientFunc(func(context.Context, types.Event) error {
			time.Sleep(500 * time.Millisecond)
			return nil
		})
	case "oversized":
		fmt.Fprintln(os.Stdout, strings.Repeat("a", maxFrameBytes+1))
		h = driver.ClientFunc(func(context.Context, types.Event) error { return nil })
	case "exit":
		h = driver.ClientFunc(func(context.Context, types.Event) error {
			fmt.Fprintln(os.Stderr, "fatal: boom")
			os.Exit(3)
			return nil
		})
	default:
		fmt.Fprintf(os.Stderr, "unknown helper mode %q\n", mode)
		return 2
	}
	if err := Serve(ctx, os.Stdin, os.Stdout, h); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func startHelper(t *testing.T, mode string, replyTimeout time.Duration) *ProcessClient {
	t.Helper()
	c, err := Start(context.Background(), ProcessConfig{
		Name:         "helper-" + mode,
		Command:      os.Args[0],
		Env:          []string{helperEnv + "=" + mode},
		ReplyTimeout: replyTimeout,
		StopTimeout:  2 * time.Second,
	})
	if err != nil {
		t.Fatalf("start helper: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
