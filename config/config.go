// Package config loads the grom connection configuration: which
// adapter backs the graph store, where it lives, and the label prefix
// applied to everything the resolver emits.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grom-db/grom"
	"github.com/grom-db/grom/registry"
	"github.com/grom-db/grom/resolve"
	"github.com/grom-db/grom/store"
	"github.com/grom-db/grom/store/bolt"
	"github.com/grom-db/grom/store/lite"
)

// Adapter names accepted in the configuration.
const (
	AdapterBolt   = "bolt"
	AdapterLite   = "lite"
	AdapterMemory = "memory"
)

// CacheConfig controls the built-in relation result cache. Expiry is
// governed by each relation's declared TTL, not by the configuration.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the grom connection configuration.
type Config struct {
	// Adapter selects the store backend: bolt, lite or memory.
	Adapter string `yaml:"adapter"`

	// URI is the Bolt connection string, e.g. "bolt://localhost:7687".
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Path is the database file for the lite adapter.
	Path string `yaml:"path"`

	// LabelPrefix is prepended to every label and edge type before any
	// store call.
	LabelPrefix string `yaml:"label_prefix"`

	Cache CacheConfig `yaml:"cache"`
}

// Default returns the default configuration: an in-memory store with
// no prefix and no cache.
func Default() Config {
	return Config{Adapter: AdapterMemory}
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration document. Unknown
// fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterBolt:
		if c.URI == "" {
			return fmt.Errorf("config: adapter %s requires uri", c.Adapter)
		}
	case AdapterLite:
		if c.Path == "" {
			return fmt.Errorf("config: adapter %s requires path", c.Adapter)
		}
	case AdapterMemory:
	default:
		return fmt.Errorf("config: unknown adapter %q", c.Adapter)
	}
	return nil
}

// Open builds the configured store adapter, wrapped with the label
// prefix when one is set.
func Open(cfg Config) (store.GraphStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		s   store.GraphStore
		err error
	)
	switch cfg.Adapter {
	case AdapterBolt:
		s, err = bolt.Open(bolt.Config{URI: cfg.URI, Username: cfg.Username, Password: cfg.Password})
	case AdapterLite:
		s, err = lite.Open(cfg.Path)
	case AdapterMemory:
		s = store.NewMemStore()
	}
	if err != nil {
		return nil, err
	}
	return store.Prefixed(s, cfg.LabelPrefix), nil
}

// Connect opens the configured store and binds a resolver to it.
func Connect(cfg Config, reg *registry.Registry, opts ...resolve.Option) (*resolve.Resolver, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Enabled {
		opts = append([]resolve.Option{resolve.WithCache(grom.NewMemCache())}, opts...)
	}
	return resolve.New(reg, s, opts...), nil
}
