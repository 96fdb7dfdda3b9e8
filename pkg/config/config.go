// Package config loads typed configuration structs from the environment
// and exposes narrow key-value lookups for runtime settings checks.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Getter is the read-only key-value view handed to request handlers.
// Implementations must be safe for concurrent use.
type Getter interface {
	// Lookup returns the value for key and whether it is present.
	Lookup(key string) (string, bool)
}

// Map is a static in-memory Getter, useful for defaults and tests.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Env reads keys from environment variables, optionally under a prefix:
// Env{Prefix: "APP_"}.Lookup("PORT") reads APP_PORT.
type Env struct {
	Prefix string
}

func (e Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(e.Prefix + key)
}

type chain []Getter

func (c chain) Lookup(key string) (string, bool) {
	for _, g := range c {
		if v, ok := g.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Chain combines getters; Lookup returns the first hit in order, so
// earlier getters override later ones:
//
//	cfg := config.Chain(config.Env{}, config.Map{"feature.uploads": "on"})
func Chain(getters ...Getter) Getter {
	return chain(getters)
}

// Load populates a configuration struct of type T from environment
// variables using env and envPrefix struct tags:
//
//	type serverConfig struct {
//	    Addr        string        `env:"HTTP_ADDR" envDefault:":8080"`
//	    ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
//	}
//
// Returns a wrapped error when a required variable is missing or a
// value cannot be converted to the field type.
func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for startup paths where a broken environment should
// stop the process.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return cfg
}
