// Package config provides configuration loading and validation for fogsched
// services.
//
// It uses Viper to load configuration from config.yml and .env files found
// in standard locations, binds environment variables on top, and unmarshals
// the merged result into a service config struct.
//
// # Usage
//
//	var cfg ServerConfig
//	err := config.LoadConfig("fogsched-server", &cfg)
//
// Environment variables override file values; SCHEDULER_POPULATION binds to
// scheduler.population and its underscore variants.
package config
