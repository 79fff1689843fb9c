// Package config loads, normalizes, and validates darkroom's TOML
// configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/darkroom/config.toml, then ./darkroom.toml; a missing file falls
// back to defaults plus environment variables (DARKROOM_API_KEY). All path
// fields are tilde-expanded and absolute after Load returns.
package config
