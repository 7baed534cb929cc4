package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds service-level settings. Source catalog entries live in a
// separate YAML file so sources can be edited without touching the
// service config.
type Config struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	OutputDir      string        `mapstructure:"output_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	SourcesFile    string        `mapstructure:"sources_file"`
	NotifiersFile  string        `mapstructure:"notifiers_file"`
	StorePath      string        `mapstructure:"store_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	HistoryLimit   int           `mapstructure:"history_limit"`
	Translate      bool          `mapstructure:"translate"`
}

// Load reads configuration from an optional YAML file and CLIPPER_*
// environment variables, applying defaults for anything unset.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("output_dir", "reports")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "sources.yaml")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("store_path", "clipper.db")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("request_delay", 2*time.Second)
	v.SetDefault("history_limit", 30)
	v.SetDefault("translate", true)

	v.SetEnvPrefix("CLIPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr is empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive")
	}
	return nil
}
