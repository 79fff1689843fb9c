package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAPI(); err != nil {
		return err
	}
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeUpload()
	c.normalizePolling()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPI() error {
	if strings.TrimSpace(c.API.APIKey) == "" {
		if value, ok := os.LookupEnv("DARKROOM_API_KEY"); ok {
			c.API.APIKey = value
		}
	}
	c.API.APIKey = strings.TrimSpace(c.API.APIKey)
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeDownload() error {
	var err error
	if strings.TrimSpace(c.Download.Dir) == "" {
		c.Download.Dir = defaultDownloadDir
	}
	if c.Download.Dir, err = ExpandPath(c.Download.Dir); err != nil {
		return fmt.Errorf("download.dir: %w", err)
	}
	if c.Download.MaxConcurrent <= 0 {
		c.Download.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Download.RetryAttempts <= 0 {
		c.Download.RetryAttempts = defaultRetryAttempts
	}
	if c.Download.RetryDelayMS <= 0 {
		c.Download.RetryDelayMS = defaultRetryDelayMS
	}
	return nil
}

func (c *Config) normalizeUpload() {
	if c.Upload.MaxConcurrent <= 0 {
		c.Upload.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Upload.RetryAttempts <= 0 {
		c.Upload.RetryAttempts = defaultRetryAttempts
	}
	if c.Upload.RetryDelayMS <= 0 {
		c.Upload.RetryDelayMS = defaultRetryDelayMS
	}
}

func (c *Config) normalizePolling() {
	if c.Polling.EditIntervalSeconds <= 0 {
		c.Polling.EditIntervalSeconds = defaultEditPollInterval
	}
	if c.Polling.EditTimeoutSeconds <= 0 {
		c.Polling.EditTimeoutSeconds = defaultEditPollTimeout
	}
	if c.Polling.ExportIntervalSeconds <= 0 {
		c.Polling.ExportIntervalSeconds = defaultExportPollInterval
	}
	if c.Polling.ExportTimeoutSeconds <= 0 {
		c.Polling.ExportTimeoutSeconds = defaultExportPollTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
