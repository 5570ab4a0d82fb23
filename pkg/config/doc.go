// Package config loads typed configuration from environment variables.
//
// Struct fields are mapped with caarlos0/env tags; an optional .env file is
// read with joho/godotenv before the first parse. Each configuration type is
// parsed once per process and cached:
//
//	var cfg access.Config
//	config.MustLoad(&cfg)
//
// LoadEnv loads additional env files explicitly and Reset clears the cache,
// mostly for tests.
package config
