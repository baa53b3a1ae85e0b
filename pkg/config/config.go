package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/form"
)

// Config is the file backed configuration shared by the commands.
type Config struct {
	Debounce        time.Duration `yaml:"debounce"`
	ValidateTimeout time.Duration `yaml:"validateTimeout"`
	LenientSchema   bool          `yaml:"lenientSchema"`
	Log             Log           `yaml:"log"`
	Server          Server        `yaml:"server"`
	TUI             TUI           `yaml:"tui"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server configures the HTTP front end.
type Server struct {
	Addr string `yaml:"addr"`
}

// TUI configures the terminal front end.
type TUI struct {
	Output      string `yaml:"output"`
	MaxAttempts int    `yaml:"maxAttempts"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Debounce: form.DefaultDebounceDelay,
		Log:      Log{Level: "info", Format: "text"},
		Server:   Server{Addr: ":8080"},
		TUI:      TUI{Output: "json", MaxAttempts: 3},
	}
}

// Load overlays a YAML or JSON document on the defaults. Durations accept
// Go duration strings such as "250ms".
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses path. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if c.ValidateTimeout < 0 {
		errs = append(errs, errors.New("validateTimeout must not be negative"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	switch strings.ToLower(c.TUI.Output) {
	case "", "json", "form", "pretty":
	default:
		errs = append(errs, fmt.Errorf("tui.output %q is not json, form or pretty", c.TUI.Output))
	}
	if c.TUI.MaxAttempts < 0 {
		errs = append(errs, errors.New("tui.maxAttempts must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the slog logger described by the Log section.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FormOptions converts the engine settings into form options.
func (c Config) FormOptions(logger *slog.Logger) []form.Option {
	opts := []form.Option{
		form.WithDebounce(c.Debounce),
		form.WithValidateTimeout(c.ValidateTimeout),
	}
	if logger != nil {
		opts = append(opts, form.WithLogger(logger))
	}
	if c.LenientSchema {
		opts = append(opts, form.WithLenientSchema())
	}
	return opts
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not debug, info, warn or error", raw)
	}
}
