package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-imagegroup"
	"github.com/anatolykoptev/go-imagegroup/internal/config"
)

type globalFlags struct {
	config    string
	folder    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags
	runID string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags: flags,
		runID: uuid.NewString(),
	}
}

// ensureConfig loads the config file once and layers the global flags on top.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if folder := strings.TrimSpace(c.flags.folder); folder != "" {
			expanded, err := config.ExpandPath(folder)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --folder: %w", err)
				return
			}
			cfg.Paths.Folder = expanded
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.flags.logFormat); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run's logger writing to w.
func (c *commandContext) newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("run_id", c.runID)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// library returns the imagegroup configuration for this command run.
func (c *commandContext) library(cmd *cobra.Command) (*imagegroup.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return &imagegroup.Config{
		Folder:        cfg.Paths.Folder,
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.FetchTimeout(),
		MaxBytes:      cfg.Fetch.MaxBytes,
		MinImageWidth: cfg.Fetch.MinImageWidth,
		LockTimeout:   cfg.LockTimeout(),
		SkipLogos:     cfg.Fetch.SkipLogos,
		Logger:        c.newLogger(cfg, cmd.ErrOrStderr()),
	}, nil
}

// groupOpts returns grouping options from config, overridden by any flags
// the user set on cmd.
func (c *commandContext) groupOpts(cmd *cobra.Command, f *groupFlags) (imagegroup.GroupOpts, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return imagegroup.GroupOpts{}, err
	}

	opts := imagegroup.GroupOpts{
		HashSize:  cfg.Grouping.HashSize,
		Threshold: cfg.Grouping.Threshold,
		DryRun:    f.dryRun,
	}
	policy := cfg.Grouping.OnConflict

	flags := cmd.Flags()
	if flags.Changed("hash-size") {
		opts.HashSize = f.hashSize
	}
	if flags.Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if flags.Changed("on-conflict") {
		policy = f.onConflict
	}

	opts.Conflict, err = imagegroup.ParseConflictPolicy(policy)
	if err != nil {
		return imagegroup.GroupOpts{}, err
	}
	return opts, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
