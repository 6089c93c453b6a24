package config

const (
	defaultConfigPath      = "~/.config/borsch/config.toml"
	defaultAPIBaseURL      = "http://0.0.0.0:8080/api/v1"
	defaultAPITimeout      = 30
	defaultUserAgent       = "borsch/dev"
	defaultLanguageVersion = "0.1.0"
	defaultPollIntervalMS  = 1000
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	apiURLEnv = "BORSCH_API_URL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeout,
			UserAgent:      defaultUserAgent,
		},
		Execution: Execution{
			LanguageVersion: defaultLanguageVersion,
			PollIntervalMS:  defaultPollIntervalMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
