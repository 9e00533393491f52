// Package config loads configuration structs from environment variables.
//
// Each package in this module declares its own Config struct with `env` tags
// and default values; hosts populate them with Load or MustLoad at wiring
// time. A .env file in the working directory is honoured once per process,
// which keeps local development close to the twelve-factor setup used in
// deployment.
//
//	var cfg dispatch.Config
//	config.MustLoad(&cfg)
//	q, err := dispatch.New(deliver, dispatch.WithConfig(cfg))
//
// Structs implementing the Validator interface are validated after parsing,
// so malformed values fail at startup instead of at first use.
package config
