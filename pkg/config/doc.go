// Package config provides a generic, cached loader for environment-based
// configuration structs.
//
// Configuration is declared with caarlos0/env struct tags; a local .env
// file is picked up automatically when present. Each configuration type
// is parsed exactly once per process and cached afterwards.
//
//	type DispatchConfig struct {
//		RateLimit int `env:"NOTIFYQ_RATE_LIMIT" envDefault:"60"`
//	}
//
//	var cfg DispatchConfig
//	config.MustLoad(&cfg)
package config
