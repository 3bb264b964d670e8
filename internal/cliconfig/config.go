// Package cliconfig loads the formtree command's settings from the
// environment (optionally seeded from .env files) and builds its logger.
package cliconfig

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FORMTREE_"

// Config holds the command defaults. Flags override every field.
type Config struct {
	ConfigPath     string            `env:"CONFIG"`
	RecordPath     string            `env:"RECORD"`
	OpenAPIPath    string            `env:"OPENAPI"`
	Operation      string            `env:"OPERATION"`
	Status         string            `env:"STATUS" envDefault:"draft"`
	UserID         string            `env:"USER_ID"`
	Roles          []string          `env:"ROLES" envSeparator:","`
	Permissions    []string          `env:"PERMISSIONS" envSeparator:","`
	OptionsTimeout time.Duration     `env:"OPTIONS_TIMEOUT" envDefault:"10s"`
	OptionsHeaders map[string]string `env:"OPTIONS_HEADERS"`
	LogLevel       string            `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string            `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFiles into the process environment and parses Config. With
// no files the default .env is tried and may be absent.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("cliconfig: load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("cliconfig: load env files: %w", err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("cliconfig: parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses Config from an explicit variable map instead of the process
// environment.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: Prefix, Environment: environment}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("cliconfig: parse environment: %w", err)
	}
	return cfg, nil
}

// ReadEnvFile parses a .env file without touching the process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cliconfig: read %s: %w", path, err)
	}
	return values, nil
}

// NewLogger creates a logger for the given level and format ("text" or
// "json"). It does not set the global logger.
func NewLogger(level, format string, out io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
