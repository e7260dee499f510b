// Package config loads typed configuration from the process environment.
//
// Values come from struct tags understood by github.com/caarlos0/env/v11.
// Optional .env files are read with github.com/joho/godotenv before parsing;
// variables already present in the environment win over file values.
//
//	type Config struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// Each struct type is parsed once per process; later calls return the cached
// copy. Reset clears the cache for tests.
package config
