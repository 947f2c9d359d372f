package refs

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config carries the operational knobs spec.md leaves as constants. An
// absent config file is equivalent to every field at its default, so a
// repository with no refdb.toml behaves exactly as the spec describes.
type Config struct {
	Lock struct {
		RetryIntervalMS int  `toml:"retry_interval_ms"`
		TimeoutMS       int  `toml:"timeout_ms"`
		FSync           bool `toml:"fsync"`
	} `toml:"lock"`

	Resolution struct {
		MaxSymbolicDepth int `toml:"max_symbolic_depth"`
	} `toml:"resolution"`

	AdditionalRefs []string `toml:"additional_refs"`
}

// DefaultConfig returns the configuration spec.md's constants describe.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Lock.RetryIntervalMS = int(lockRetryDelay / time.Millisecond)
	cfg.Lock.TimeoutMS = int(lockWaitLimit / time.Millisecond)
	cfg.Lock.FSync = true
	cfg.Resolution.MaxSymbolicDepth = maxSymbolicDepth
	cfg.AdditionalRefs = append([]string(nil), additionalRefNames...)
	return cfg
}

// LoadConfig reads path (conventionally "<repo>/refdb.toml"). A missing
// file yields DefaultConfig, not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// retryInterval returns the lock retry interval as a time.Duration.
func (c *Config) retryInterval() time.Duration {
	return time.Duration(c.Lock.RetryIntervalMS) * time.Millisecond
}

// timeout returns the lock wait limit as a time.Duration.
func (c *Config) timeout() time.Duration {
	return time.Duration(c.Lock.TimeoutMS) * time.Millisecond
}
