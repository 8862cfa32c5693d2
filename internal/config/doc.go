// Package config layers cvkit settings from defaults, an optional .env
// file, the config file, environment variables, and flags.
package config
