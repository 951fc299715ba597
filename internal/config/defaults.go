package config

const (
	defaultConfigPath           = "~/.config/bilisum/config.toml"
	defaultBaseURL              = "http://localhost:8000"
	defaultRequestTimeout       = 15
	defaultPollIntervalMillis   = 1000
	minPollIntervalMillis       = 50
	defaultOutputDir            = "~/.local/share/bilisum/summaries"
	defaultStateDir             = "~/.local/share/bilisum"
	defaultLogDir               = "~/.local/share/bilisum/logs"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	baseURLEnv                  = "BILISUM_BASE_URL"
	ntfyTopicEnv                = "BILISUM_NTFY_TOPIC"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Polling: Polling{
			IntervalMillis: defaultPollIntervalMillis,
		},
		Output: Output{
			Dir:        defaultOutputDir,
			WriteFiles: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
