package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"eventdriver/internal/common/fsutil"
)

// Client types understood by the CLI wiring.
const (
	ClientLog      = "log"
	ClientRecorder = "recorder"
	ClientStub     = "stub"
	ClientProcess  = "process"
)

// Config holds runtime parameters for the driver and its surfaces.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	LogLevel      string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat     string         `json:"log_format" yaml:"log_format" toml:"log_format"`
	FailurePolicy string         `json:"failure_policy" yaml:"failure_policy" toml:"failure_policy"`
	Addr          string         `json:"addr" yaml:"addr" toml:"addr"`
	MaxBodyBytes  int64          `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled   bool           `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins   []string       `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Clients       []ClientConfig `json:"clients" yaml:"clients" toml:"clients"`
}

// ClientConfig declares one client, in dispatch order.
type ClientConfig struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Type    string   `json:"type" yaml:"type" toml:"type"`
	Command string   `json:"command" yaml:"command" toml:"command"`
	Args    []string `json:"args" yaml:"args" toml:"args"`
	Env     []string `json:"env" yaml:"env" toml:"env"`
	Dir     string   `json:"dir" yaml:"dir" toml:"dir"`
	// Timeouts in milliseconds; 0 uses the adapter defaults.
	ReplyTimeoutMS int `json:"reply_timeout_ms" yaml:"reply_timeout_ms" toml:"reply_timeout_ms"`
	StopTimeoutMS  int `json:"stop_timeout_ms" yaml:"stop_timeout_ms" toml:"stop_timeout_ms"`
}

func (c ClientConfig) ReplyTimeout() time.Duration {
	return time.Duration(c.ReplyTimeoutMS) * time.Millisecond
}

func (c ClientConfig) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMS) * time.Millisecond
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unspecified fields and expands '~' in client paths.
func (c *Config) ApplyDefaults() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = "fail_fast"
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	for i := range c.Clients {
		cc := &c.Clients[i]
		if cc.Type == "" {
			cc.Type = ClientLog
		}
		if cc.Name == "" {
			cc.Name = fmt.Sprintf("%s-%d", cc.Type, i+1)
		}
		var err error
		if cc.Command, err = fsutil.ExpandHome(cc.Command); err != nil {
			return err
		}
		if cc.Dir, err = fsutil.ExpandHome(cc.Dir); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the wiring cannot build.
func (c Config) Validate() error {
	switch strings.ToLower(c.FailurePolicy) {
	case "", "fail_fast", "failfast", "isolate":
	default:
		return fmt.Errorf("unknown failure_policy %q", c.FailurePolicy)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	seen := make(map[string]int, len(c.Clients))
	for i, cc := range c.Clients {
		if cc.Name != "" {
			if j, dup := seen[cc.Name]; dup {
				return fmt.Errorf("clients[%d]: duplicate name %q (also clients[%d])", i, cc.Name, j)
			}
			seen[cc.Name] = i
		}
		switch cc.Type {
		case "", ClientLog, ClientRecorder, ClientStub:
		case ClientProcess:
			if strings.TrimSpace(cc.Command) == "" {
				return fmt.Errorf("clients[%d] (%s): process client requires command", i, cc.Name)
			}
		default:
			return fmt.Errorf("clients[%d] (%s): unknown type %q", i, cc.Name, cc.Type)
		}
		if cc.ReplyTimeoutMS < 0 || cc.StopTimeoutMS < 0 {
			return fmt.Errorf("clients[%d] (%s): negative timeout", i, cc.Name)
		}
	}
	return nil
}
