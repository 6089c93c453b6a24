package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	c.normalizeExecution()
	return c.normalizeLogging()
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if value, ok := os.LookupEnv(apiURLEnv); ok && strings.TrimSpace(value) != "" {
		c.API.BaseURL = strings.TrimSpace(value)
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultAPITimeout
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeExecution() {
	c.Execution.LanguageVersion = strings.TrimSpace(c.Execution.LanguageVersion)
	if c.Execution.LanguageVersion == "" {
		c.Execution.LanguageVersion = defaultLanguageVersion
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
	if err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	c.Logging.Dir = dir
	return nil
}
