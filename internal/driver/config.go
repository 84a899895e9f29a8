package driver

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Policy decides what a handler failure does to the rest of a dispatch.
type Policy int

const (
	// FailFast stops at the first failing client and returns its error.
	FailFast Policy = iota
	// Isolate delivers to every client and returns all failures together.
	Isolate
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case Isolate:
		return "isolate"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a config string to a Policy. Empty means FailFast.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail_fast", "failfast":
		return FailFast, nil
	case "isolate":
		return Isolate, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Config encapsulates all tunables for Driver construction.
type Config struct {
	Clients []Client
	Policy  Policy
	// Logger defaults to zerolog.Nop().
	Logger *zerolog.Logger
}
