package imagegroup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// lockFilePath returns the advisory lock file for folder. Locks live in the
// user's runtime directory (or the temp directory when there is none),
// keyed by the folder's resolved absolute path, so the image folder itself
// is never written to just to take the lock.
func lockFilePath(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:16]) + ".lock"

	if path, err := xdg.RuntimeFile(filepath.Join("imagegroup", name)); err == nil {
		return path, nil
	}
	return filepath.Join(os.TempDir(), "imagegroup-"+name), nil
}

// lockFolder acquires the folder lock, waiting up to cfg.LockTimeout.
// Fetch and grouping passes hold it so a grouping pass never sees a
// half-written batch. The returned func releases it.
func (cfg *Config) lockFolder(ctx context.Context, folder string) (func(), error) {
	path, err := lockFilePath(folder)
	if err != nil {
		return nil, &FolderError{Path: folder, Err: err}
	}
	lock := flock.New(path)

	lockCtx, cancel := context.WithTimeout(ctx, cfg.LockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrFolderBusy
		}
		return nil, &FolderError{Path: folder, Err: err}
	}
	if !ok {
		return nil, ErrFolderBusy
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			cfg.Logger.Debug("imagegroup: unlock failed", "path", lock.Path(), "error", err)
		}
	}, nil
}
