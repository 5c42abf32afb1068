package imagegroup

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap one of these so callers can use
// errors.Is without inspecting the concrete type.
var (
	// ErrFolder is returned when the image folder is missing, is not a
	// directory, or cannot be read. It aborts the whole grouping pass.
	ErrFolder = errors.New("image folder unavailable")

	// ErrFolderBusy is returned when another fetch or grouping pass holds the
	// folder lock for longer than Config.LockTimeout.
	ErrFolderBusy = errors.New("image folder is locked by another pass")

	// ErrDecode marks a file whose bytes are not a supported raster image.
	ErrDecode = errors.New("cannot decode image")

	// ErrEmptyImage marks an image that decodes but has no pixels.
	ErrEmptyImage = errors.New("image has no pixels")

	// ErrMove marks a file that could not be relocated into its group folder.
	ErrMove = errors.New("cannot move image")

	// ErrFetch marks a URL that could not be fetched and stored.
	ErrFetch = errors.New("fetch failed")

	ErrEmptyURL   = errors.New("empty URL")
	ErrInvalidURL = errors.New("URL must be absolute http or https")
	ErrLogoURL    = errors.New("URL looks like a logo or banner")
	ErrNotImage   = errors.New("response is not an image")
	ErrTooLarge   = errors.New("response exceeds size limit")
	ErrTooNarrow  = errors.New("image is narrower than the minimum width")

	ErrInvalidHashSize  = errors.New("hash size must be positive")
	ErrInvalidThreshold = errors.New("threshold must be non-negative")
)

// FolderError reports a fatal problem with the image folder itself.
type FolderError struct {
	Path string
	Err  error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("image folder %q: %v", e.Path, e.Err)
}

func (e *FolderError) Unwrap() []error { return []error{ErrFolder, e.Err} }

// DecodeError reports a candidate file that could not be read or decoded.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// MoveError reports a member file that stayed in place because the move
// into its group folder failed.
type MoveError struct {
	Name string
	Dest string
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s to %s: %v", e.Name, e.Dest, e.Err)
}

func (e *MoveError) Unwrap() []error { return []error{ErrMove, e.Err} }

// FetchError reports a URL that could not be fetched. Status is the HTTP
// status code when the server answered with something other than 200.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
