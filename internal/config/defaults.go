package config

const (
	defaultBaseURL             = "https://api.photo-editing.example.com/v1"
	defaultRequestTimeout      = 60
	defaultMaxConcurrent       = 5
	defaultRetryAttempts       = 3
	defaultRetryDelayMS        = 500
	defaultDownloadDir         = "./edited"
	defaultEditPollInterval    = 10
	defaultEditPollTimeout     = 1800
	defaultExportPollInterval  = 5
	defaultExportPollTimeout   = 600
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Upload: Upload{
			MaxConcurrent: defaultMaxConcurrent,
			RetryAttempts: defaultRetryAttempts,
			RetryDelayMS:  defaultRetryDelayMS,
		},
		Download: Download{
			Dir:           defaultDownloadDir,
			MaxConcurrent: defaultMaxConcurrent,
			RetryAttempts: defaultRetryAttempts,
			RetryDelayMS:  defaultRetryDelayMS,
		},
		Polling: Polling{
			EditIntervalSeconds:   defaultEditPollInterval,
			EditTimeoutSeconds:    defaultEditPollTimeout,
			ExportIntervalSeconds: defaultExportPollInterval,
			ExportTimeoutSeconds:  defaultExportPollTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Workflow:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
