package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHashSize   = errors.New("grouping.hash_size must be positive")
	ErrInvalidThreshold  = errors.New("grouping.threshold must not be negative")
	ErrInvalidOnConflict = errors.New(`grouping.on_conflict must be "skip" or "rename"`)
	ErrInvalidFetch      = errors.New("invalid fetch setting")
	ErrInvalidLogging    = errors.New("invalid logging setting")
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGrouping(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.LockTimeoutSeconds < 0 {
		return errors.New("paths.lock_timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateGrouping() error {
	if c.Grouping.HashSize < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidHashSize, c.Grouping.HashSize)
	}
	if c.Grouping.Threshold < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidThreshold, c.Grouping.Threshold)
	}
	switch c.Grouping.OnConflict {
	case "skip", "rename":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidOnConflict, c.Grouping.OnConflict)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: fetch.timeout_seconds must not be negative", ErrInvalidFetch)
	}
	if c.Fetch.MaxBytes < 0 {
		return fmt.Errorf("%w: fetch.max_bytes must not be negative", ErrInvalidFetch)
	}
	if c.Fetch.MinImageWidth < 0 {
		return fmt.Errorf("%w: fetch.min_image_width must not be negative", ErrInvalidFetch)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json (got %q)", ErrInvalidLogging, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q is not recognized", ErrInvalidLogging, c.Logging.Level)
	}
	return nil
}
