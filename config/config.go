// Package config describes the paychan client configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/paychan/registry"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file values.
const (
	EnvRPCEndpoint = "PAYCHAN_RPC_ENDPOINT"
	EnvWalletPath  = "PAYCHAN_WALLET"
	EnvLogLevel    = "PAYCHAN_LOG_LEVEL"
)

// Defaults.
const (
	DefaultLogLevel       = "info"
	DefaultWalletPath     = "paychan.db"
	DefaultDialTimeout    = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultDumpDir        = "."
)

// Config is the root of the configuration file.
type Config struct {
	Logger  Logger   `yaml:"logger"`
	Wallet  Wallet   `yaml:"wallet"`
	RPC     RPC      `yaml:"rpc"`
	Dump    Dump     `yaml:"dump"`
	NNS     NNS      `yaml:"nns"`
	Modules []Module `yaml:"modules"`
}

// Logger configures logging.
type Logger struct {
	Level string `yaml:"level"`
}

// Wallet configures the local account store.
type Wallet struct {
	Path string `yaml:"path"`
}

// RPC configures connection to the Neo RPC node.
type RPC struct {
	Endpoint       string        `yaml:"endpoint"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Dump configures location of account state dumps.
type Dump struct {
	Dir string `yaml:"dir"`
}

// NNS configures resolution of module addresses via NNS. Modules listed
// explicitly take precedence over resolved ones.
type NNS struct {
	Enabled bool   `yaml:"enabled"`
	Zone    string `yaml:"zone"`
	// Names to resolve in the zone, all known modules if empty.
	Names []string `yaml:"names"`
}

// Module binds symbolic module name to the address of the account that
// deployed it. Address is either Neo address or LE hex.
type Module struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// Default returns configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logger: Logger{Level: DefaultLogLevel},
		Wallet: Wallet{Path: DefaultWalletPath},
		RPC: RPC{
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
		Dump: Dump{Dir: DefaultDumpDir},
		NNS:  NNS{Zone: registry.DefaultZone},
	}
}

// Load reads YAML configuration from path over the defaults and applies
// environment overrides. Empty path means defaults only.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("decode config YAML: %w", err)
		}
	}

	applyEnvOverrides(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvRPCEndpoint); v != "" {
		c.RPC.Endpoint = v
	}
	if v := os.Getenv(EnvWalletPath); v != "" {
		c.Wallet.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if c.Wallet.Path == "" {
		return errors.New("empty wallet path")
	}

	if c.RPC.DialTimeout < 0 || c.RPC.RequestTimeout < 0 {
		return errors.New("negative RPC timeout")
	}

	if c.NNS.Enabled && c.NNS.Zone == "" {
		return errors.New("empty NNS zone")
	}

	if _, err := c.Registry(); err != nil {
		return err
	}

	return nil
}

// LogLevel returns parsed logger level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logger.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid logger level: %w", err)
	}
	return lvl, nil
}

// Registry returns registry of explicitly configured modules.
func (c *Config) Registry() (*registry.Registry, error) {
	r := registry.New()

	for i, m := range c.Modules {
		if m.Name == "" {
			return nil, fmt.Errorf("module #%d: empty name", i)
		}

		addr, err := registry.ParseAddress(m.Address)
		if err != nil {
			return nil, fmt.Errorf("module '%s': %w", m.Name, err)
		}

		r.Add(m.Name, addr)
	}

	return r, nil
}
