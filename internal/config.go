package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ThssDBConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Mode    string `mapstructure:"mode"` // "file" or "memory"
		Workdir string `mapstructure:"workdir"`
	} `mapstructure:"storage"`

	Server struct {
		Addr        string        `mapstructure:"addr"`
		Debug       bool          `mapstructure:"debug"`
		IdleTimeout time.Duration `mapstructure:"idle_timeout"` // 0 = never
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// NewViper returns a viper instance with defaults and THSSDB_* environment
// overrides (THSSDB_SERVER_ADDR, THSSDB_STORAGE_MODE, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_name", "thssdb")
	v.SetDefault("storage.mode", "file")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("server.addr", "127.0.0.1:6667")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.idle_timeout", "0s")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("thssdb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the YAML file at path (if non-empty) on top of the defaults.
func LoadConfig(path string) (*ThssDBConfig, error) {
	v := NewViper()
	return LoadConfigFrom(v, path)
}

// LoadConfigFrom is LoadConfig over a caller-prepared viper, e.g. one with
// command-line flags already bound.
func LoadConfigFrom(v *viper.Viper, path string) (*ThssDBConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg ThssDBConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ThssDBConfig) Validate() error {
	switch c.Storage.Mode {
	case "file":
		if c.Storage.Workdir == "" {
			return errors.New("config: storage.workdir is required in file mode")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown storage.mode %q", c.Storage.Mode)
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("config: negative server.idle_timeout %s", c.Server.IdleTimeout)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level; server.debug forces debug.
func (c *ThssDBConfig) LogLevel() (slog.Level, error) {
	if c.Server.Debug {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: bad log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}
