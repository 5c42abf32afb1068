// Package imagegroup fetches images from URLs into a flat folder and sorts
// the folder into group_<id> subfolders of visually similar images.
//
// Similarity is an average hash compared by Hamming distance. Each incoming
// image joins the first existing group whose representative is within the
// threshold, in group creation order, or starts a new group.
package imagegroup

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultFolder is the flat folder fetched images land in.
	DefaultFolder = "Fetched_Images"

	// DefaultHashSize gives 8x8 = 64-bit fingerprints.
	DefaultHashSize = 8

	// DefaultThreshold is the largest Hamming distance at which two images
	// still share a group.
	DefaultThreshold = 5

	// DefaultLockTimeout bounds how long a pass waits for the folder lock.
	DefaultLockTimeout = 30 * time.Second
)

// Config holds all dependencies injected by the consumer.
type Config struct {
	Folder        string        // default: DefaultFolder
	StealthClient *http.Client  // optional: TLS-fingerprinted client tried first for downloads
	HTTPClient    *http.Client  // optional: default http client (nil = http.DefaultClient)
	UserAgent     string        // default: "Mozilla/5.0 (compatible; go-imagegroup/1.0)"
	Timeout       time.Duration // per-request timeout (default: 10s)
	MaxBytes      int64         // max image size (default: 20 MiB)
	MinImageWidth int           // 0 = accept any width
	LockTimeout   time.Duration // default: DefaultLockTimeout

	// SkipLogos refuses URLs whose path looks like a logo, icon or banner.
	SkipLogos bool

	// Logger receives debug and warning records (nil = slog.Default()).
	Logger *slog.Logger

	// Optional callbacks for progress reporting.
	OnFetch func(FetchOutcome)
	OnMove  func(name string, groupID int)
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Folder == "" {
		c.Folder = DefaultFolder
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; go-imagegroup/1.0)"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = defaultMaxBytes
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
