package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the ubxctl daemon configuration.
type Config struct {
	Port        string   `toml:"port"`
	Baud        int      `toml:"baud"`
	Strict      bool     `toml:"strict"`
	HTTPAddr    string   `toml:"http_addr"`
	CorsOrigins []string `toml:"cors_origins"`
	LogLevel    string   `toml:"log_level"`
}

// Default returns the configuration used when a key is absent.
func Default() Config {
	return Config{
		Port:     "/dev/ttyACM0",
		Baud:     38400,
		HTTPAddr: ":9120",
		LogLevel: "info",
	}
}

// Load reads a TOML config file, overlaying defaults and validating the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("config: baud must be positive, got %d", cfg.Baud)
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("config: http_addr must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
