// Package config provides configuration management for valaam-downloader.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a JSON/YAML/TOML file, VALAAM_* environment
//     variables and command line flags (in increasing precedence)
//   - Saving the effective settings back to a file
//   - Building the zerolog logger used by the other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Scrapes https://valaam.ru/chants/
//	// Downloads to ./downloads/{album}/{track}.mp3
//	// 10 second page timeout, no download timeout
//
// # Loading
//
//	settings, err := config.Load("/path/to/config.yaml", pflag.CommandLine)
//
// An empty path or a missing file is not an error; defaults are used.
//
// # Environment
//
// Every key can be overridden from the environment with the VALAAM_ prefix:
//
//	VALAAM_DOWNLOADS_PATH=/music/valaam VALAAM_LOG_LEVEL=debug valaam-dl
package config
