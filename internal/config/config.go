// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package config loads service configuration from a YAML file with
// command-line flag overrides.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the docgate service configuration.
type Config struct {
	Database      Database      `koanf:"database"`
	Server        Server        `koanf:"server"`
	Observability Observability `koanf:"observability"`
	Log           Log           `koanf:"log"`
}

// Database holds connection settings for PostgreSQL.
type Database struct {
	URL string `koanf:"url"`
}

// Server holds the decision API listener settings.
type Server struct {
	Addr string `koanf:"addr"`
}

// Observability holds the metrics and health probe listener settings.
type Observability struct {
	Addr string `koanf:"addr"`
}

// Log holds logging settings.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:        Server{Addr: ":8080"},
		Observability: Observability{Addr: ":9100"},
		Log:           Log{Format: "json", Level: "info"},
	}
}

// Load reads configuration in precedence order: defaults, then the YAML file
// at path (optional, skipped when empty), then flags that were explicitly
// set. The DATABASE_URL environment variable fills database.url when the
// file and flags leave it empty.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	cfg := Default()
	for key, val := range map[string]string{
		"server.addr":        cfg.Server.Addr,
		"observability.addr": cfg.Observability.Addr,
		"log.format":         cfg.Log.Format,
		"log.level":          cfg.Log.Level,
	} {
		if err := k.Set(key, val); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "set default")
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load config file")
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "load config flags")
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "unmarshal config")
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}
