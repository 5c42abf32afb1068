package imagegroup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DownloadOpts configures a single download.
type DownloadOpts struct {
	MaxBytes  int64         // max response body size (default: cfg.MaxBytes)
	MinBytes  int           // reject if smaller (default: 0)
	Timeout   time.Duration // per-request timeout (default: cfg.Timeout)
	UserAgent string        // override config user agent
	AllowHTML bool          // accept text/html so callers can look for og:image
}

const (
	defaultMaxBytes = 20 << 20 // 20 MiB
	defaultTimeout  = 10 * time.Second
)

// DownloadResult holds downloaded response data.
type DownloadResult struct {
	Data     []byte
	MIMEType string
}

// IsHTML reports whether the response was an HTML page.
func (r *DownloadResult) IsHTML() bool {
	return r.MIMEType == "text/html" || r.MIMEType == "application/xhtml+xml"
}

// Download fetches url. Tries cfg.StealthClient first (if set), falls back
// to cfg.HTTPClient. Failures are returned as *FetchError.
func (cfg *Config) Download(ctx context.Context, url string, opts DownloadOpts) (*DownloadResult, error) {
	cfg.defaults()

	if opts.MaxBytes <= 0 {
		opts.MaxBytes = cfg.MaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = cfg.Timeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = cfg.UserAgent
	}

	if cfg.StealthClient != nil {
		r, err := fetchImageData(ctx, cfg.StealthClient, url, ua, opts)
		if err == nil {
			return r, nil
		}
		cfg.Logger.Debug("imagegroup: stealth download failed, falling back", "url", url, "error", err)
	}

	return fetchImageData(ctx, cfg.HTTPClient, url, ua, opts)
}

func fetchImageData(ctx context.Context, client *http.Client, imageURL, ua string, opts DownloadOpts) (*DownloadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req) //nolint:gosec // caller-supplied URL
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: imageURL, Status: resp.StatusCode}
	}

	ct := resp.Header.Get("Content-Type")
	// Strip MIME parameters: "image/jpeg; charset=utf-8" → "image/jpeg"
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))

	result := &DownloadResult{MIMEType: ct}
	if !strings.HasPrefix(ct, "image/") && !(opts.AllowHTML && result.IsHTML()) {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("%w: content type %q", ErrNotImage, ct)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("%w: more than %d bytes", ErrTooLarge, opts.MaxBytes)}
	}
	if len(data) < opts.MinBytes {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("%w: only %d bytes", ErrNotImage, len(data))}
	}

	result.Data = data
	return result, nil
}
