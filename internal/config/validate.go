package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateTransfers(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/darkroom/config.toml"
		}
		return fmt.Errorf("api.api_key is required. Set DARKROOM_API_KEY env var or edit %s (create with 'darkroom config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTransfers() error {
	if c.Upload.MaxConcurrent > 64 {
		return errors.New("upload.max_concurrent must be at most 64")
	}
	if c.Download.MaxConcurrent > 64 {
		return errors.New("download.max_concurrent must be at most 64")
	}
	if c.Download.Dir == "" {
		return errors.New("download.dir must be set")
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Polling.EditTimeoutSeconds < c.Polling.EditIntervalSeconds {
		return errors.New("polling.edit_timeout must be at least polling.edit_interval")
	}
	if c.Polling.ExportTimeoutSeconds < c.Polling.ExportIntervalSeconds {
		return errors.New("polling.export_timeout must be at least polling.export_interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
