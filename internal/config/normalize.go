package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGrouping()
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	c.Paths.Folder = strings.TrimSpace(c.Paths.Folder)
	if c.Paths.Folder == "" {
		c.Paths.Folder = defaultFolder
	}
	var err error
	if c.Paths.Folder, err = expandPath(c.Paths.Folder); err != nil {
		return fmt.Errorf("paths.folder: %w", err)
	}
	if c.Paths.LockTimeoutSeconds == 0 {
		c.Paths.LockTimeoutSeconds = defaultLockTimeout
	}
	return nil
}

func (c *Config) normalizeGrouping() {
	if c.Grouping.HashSize == 0 {
		c.Grouping.HashSize = defaultHashSize
	}
	c.Grouping.OnConflict = strings.ToLower(strings.TrimSpace(c.Grouping.OnConflict))
	if c.Grouping.OnConflict == "" {
		c.Grouping.OnConflict = defaultOnConflict
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = defaultMaxBytes
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	default:
		c.Logging.Level = level
	}
}
