package imagegroup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxRenameAttempts bounds the search for a free name under ConflictRename.
const maxRenameAttempts = 10000

// moveGroups relocates every group member into <folder>/group_<id>, in group
// id order and member insertion order. Failures are recorded on the report.
func (cfg *Config) moveGroups(folder string, report *GroupingReport, policy ConflictPolicy) {
	for _, grp := range report.Groups {
		if len(grp.Members) == 0 {
			continue
		}

		dir := filepath.Join(folder, grp.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			for _, name := range grp.Members {
				report.warn(name, &MoveError{Name: name, Dest: dir, Err: err})
			}
			continue
		}

		for _, name := range grp.Members {
			moved, err := moveFile(folder, dir, name, policy)
			switch {
			case err != nil:
				cfg.Logger.Warn("imagegroup: move failed", "file", name, "group", grp.ID, "error", err)
				report.warn(name, err)
			case !moved:
				cfg.Logger.Info("imagegroup: destination exists, left in place", "file", name, "group", grp.ID)
				report.Skipped = append(report.Skipped, name)
			default:
				report.Moved++
				if cfg.OnMove != nil {
					cfg.OnMove(name, grp.ID)
				}
			}
		}
	}
}

// moveFile renames folder/name into dir. It returns false without error when
// the destination exists and policy is ConflictSkip.
func moveFile(folder, dir, name string, policy ConflictPolicy) (bool, error) {
	src := filepath.Join(folder, name)
	dst := filepath.Join(dir, name)

	exists, err := pathExists(dst)
	if err != nil {
		return false, &MoveError{Name: name, Dest: dst, Err: err}
	}
	if exists {
		if policy != ConflictRename {
			return false, nil
		}
		dst, err = freeName(dir, name)
		if err != nil {
			return false, &MoveError{Name: name, Dest: dir, Err: err}
		}
	}

	if err := os.Rename(src, dst); err != nil {
		return false, &MoveError{Name: name, Dest: dst, Err: err}
	}
	return true, nil
}

// freeName returns the first dir/<stem>_<n><ext> that does not exist.
func freeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxRenameAttempts; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		exists, err := pathExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxRenameAttempts)
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
