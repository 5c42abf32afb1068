package imagegroup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FetchResult describes one image stored in the folder.
type FetchResult struct {
	URL         string // URL as given by the caller
	ImageURL    string // URL the image bytes came from (differs when an og:image was followed)
	Path        string
	Filename    string
	Size        int
	MIMEType    string
	Duplicate   bool // identical bytes were already stored under the same name
	Attribution *Attribution
}

// FetchOutcome pairs a URL with its result or error.
type FetchOutcome struct {
	URL    string
	Result *FetchResult
	Err    error
}

// Fetch downloads rawURL into cfg.Folder under its content-addressed name
// (see StoredFilename), creating the folder if needed. An HTML page is
// accepted when it names an og:image, which is then fetched instead.
func (cfg *Config) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	cfg.defaults()

	unlock, err := cfg.prepareFolder(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return cfg.fetchOne(ctx, rawURL)
}

// FetchAll fetches urls one after another under a single folder lock and
// returns one outcome per non-blank URL, in input order. A failing URL
// never stops the batch.
func (cfg *Config) FetchAll(ctx context.Context, urls []string) []FetchOutcome {
	cfg.defaults()

	var outcomes []FetchOutcome
	record := func(o FetchOutcome) {
		outcomes = append(outcomes, o)
		if cfg.OnFetch != nil {
			cfg.OnFetch(o)
		}
	}

	unlock, err := cfg.prepareFolder(ctx)
	if err != nil {
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				record(FetchOutcome{URL: u, Err: err})
			}
		}
		return outcomes
	}
	defer unlock()

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			record(FetchOutcome{URL: u, Err: err})
			continue
		}
		res, err := cfg.fetchOne(ctx, u)
		record(FetchOutcome{URL: u, Result: res, Err: err})
	}
	return outcomes
}

func (cfg *Config) prepareFolder(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(cfg.Folder, 0o755); err != nil {
		return nil, &FolderError{Path: cfg.Folder, Err: err}
	}
	return cfg.lockFolder(ctx, cfg.Folder)
}

func (cfg *Config) fetchOne(ctx context.Context, rawURL string) (*FetchResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &FetchError{Err: ErrEmptyURL}
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &FetchError{URL: rawURL, Err: ErrInvalidURL}
	}
	if cfg.SkipLogos && IsLogoOrBanner(rawURL) {
		return nil, &FetchError{URL: rawURL, Err: ErrLogoURL}
	}

	res, err := cfg.Download(ctx, rawURL, DownloadOpts{AllowHTML: true})
	if err != nil {
		return nil, err
	}

	imageURL := rawURL
	if res.IsHTML() {
		og := ExtractOGImageURL(string(res.Data))
		if og == "" {
			return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("%w: HTML page without og:image", ErrNotImage)}
		}
		ref, err := u.Parse(og)
		if err != nil {
			return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("og:image %q: %w", og, err)}
		}
		imageURL = ref.String()
		cfg.Logger.Debug("imagegroup: following og:image", "page", rawURL, "image", imageURL)

		res, err = cfg.Download(ctx, imageURL, DownloadOpts{})
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.checkDimensions(imageURL, res.Data); err != nil {
		return nil, err
	}

	name := StoredFilename(imageURL, res.Data, res.MIMEType)
	result := &FetchResult{
		URL:         rawURL,
		ImageURL:    imageURL,
		Filename:    name,
		Path:        filepath.Join(cfg.Folder, name),
		Size:        len(res.Data),
		MIMEType:    res.MIMEType,
		Attribution: ExtractAttribution(res.Data),
	}

	existing, err := findStoredCopy(cfg.Folder, name, res.Data)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if existing != "" {
		result.Path = existing
		result.Duplicate = true
		cfg.Logger.Debug("imagegroup: already stored", "url", rawURL, "path", existing)
		return result, nil
	}

	if err := writeFileAtomic(result.Path, res.Data); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	cfg.Logger.Debug("imagegroup: stored", "url", rawURL, "path", result.Path, "bytes", result.Size)
	return result, nil
}

// findStoredCopy looks for name holding exactly data, first directly in
// folder and then in its group_* subfolders. Returns "" if none matches.
func findStoredCopy(folder, name string, data []byte) (string, error) {
	candidates := []string{filepath.Join(folder, name)}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "group_") {
			candidates = append(candidates, filepath.Join(folder, e.Name(), name))
		}
	}

	for _, path := range candidates {
		existing, err := os.ReadFile(path) //nolint:gosec // path is built from the caller's folder
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if bytes.Equal(existing, data) {
			return path, nil
		}
	}
	return "", nil
}

// writeFileAtomic writes data to a hidden temp file beside path and renames
// it into place, so readers never observe a partial image.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
