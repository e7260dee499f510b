package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.Mutex
	cache = map[reflect.Type]any{}
)

// Load parses the environment into a T. Files are loaded into the process
// environment first; when none are given, ./.env is tried and silently
// skipped if missing.
func Load[T any](files ...string) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if v, ok := cache[typ]; ok {
		return v.(T), nil
	}
	if err := loadEnvFiles(files); err != nil {
		return zero, err
	}

	v, err := env.ParseAs[T]()
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	cache[typ] = v
	return v, nil
}

// MustLoad is Load that panics on error.
func MustLoad[T any](files ...string) T {
	v, err := Load[T](files...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return v
}

// Reset drops every cached configuration.
func Reset() {
	mu.Lock()
	clear(cache)
	mu.Unlock()
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrEnvFile, err)
	}
	return nil
}
