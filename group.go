package imagegroup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions are the lowercase extensions considered for grouping.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// IsImageFile reports whether name has a recognized image extension
// (case-insensitive).
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Group is one cluster of similar images.
type Group struct {
	ID             int
	Representative Fingerprint // fingerprint of the first member
	Members        []string    // filenames in insertion order
}

// Dir returns the subfolder name for the group, e.g. "group_3".
func (g Group) Dir() string { return fmt.Sprintf("group_%d", g.ID) }

// Grouper assigns fingerprints to groups. A fingerprint joins the first
// group, in creation order, whose representative is within the threshold;
// otherwise it starts a new group. It does no I/O.
type Grouper struct {
	threshold int
	groups    []*Group
	seen      map[string]int
}

// NewGrouper returns an empty Grouper. Negative thresholds are treated as 0.
func NewGrouper(threshold int) *Grouper {
	return &Grouper{
		threshold: max(threshold, 0),
		seen:      make(map[string]int),
	}
}

// Assign places name into a group and returns the group id. Assigning a
// name twice returns its existing group without adding it again.
func (g *Grouper) Assign(name string, fp Fingerprint) (int, error) {
	if fp.IsZero() {
		return 0, fmt.Errorf("assign %s: empty fingerprint", name)
	}
	if id, ok := g.seen[name]; ok {
		return id, nil
	}

	for _, grp := range g.groups {
		dist, err := fp.Distance(grp.Representative)
		if err != nil {
			return 0, fmt.Errorf("assign %s: %w", name, err)
		}
		if dist <= g.threshold {
			grp.Members = append(grp.Members, name)
			g.seen[name] = grp.ID
			return grp.ID, nil
		}
	}

	grp := &Group{
		ID:             len(g.groups) + 1,
		Representative: fp,
		Members:        []string{name},
	}
	g.groups = append(g.groups, grp)
	g.seen[name] = grp.ID
	return grp.ID, nil
}

// Groups returns a snapshot of all groups in id order.
func (g *Grouper) Groups() []Group {
	out := make([]Group, 0, len(g.groups))
	for _, grp := range g.groups {
		out = append(out, Group{
			ID:             grp.ID,
			Representative: grp.Representative,
			Members:        append([]string(nil), grp.Members...),
		})
	}
	return out
}

// Len returns the number of groups created so far.
func (g *Grouper) Len() int { return len(g.groups) }

// ConflictPolicy decides what happens when a group folder already holds a
// file with the member's name.
type ConflictPolicy int

const (
	// ConflictSkip leaves the member in the flat folder.
	ConflictSkip ConflictPolicy = iota
	// ConflictRename moves the member under the first free "<stem>_<n><ext>".
	ConflictRename
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictRename:
		return "rename"
	default:
		return "skip"
	}
}

// ParseConflictPolicy accepts "skip" or "rename" (case-insensitive).
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ConflictSkip, nil
	case "rename":
		return ConflictRename, nil
	default:
		return ConflictSkip, fmt.Errorf("unknown conflict policy %q (want skip or rename)", s)
	}
}

// GroupOpts configures a grouping pass.
// A zero HashSize means DefaultHashSize. Threshold is used as given, so
// start from DefaultGroupOpts to get the default of 5.
type GroupOpts struct {
	HashSize  int
	Threshold int
	Conflict  ConflictPolicy
	DryRun    bool // classify and report without touching the filesystem
}

// DefaultGroupOpts returns hash size 8, threshold 5, skip on conflict.
func DefaultGroupOpts() GroupOpts {
	return GroupOpts{
		HashSize:  DefaultHashSize,
		Threshold: DefaultThreshold,
		Conflict:  ConflictSkip,
	}
}

func (o GroupOpts) normalize() (GroupOpts, error) {
	if o.HashSize == 0 {
		o.HashSize = DefaultHashSize
	}
	if o.HashSize < 0 {
		return o, ErrInvalidHashSize
	}
	if o.Threshold < 0 {
		return o, ErrInvalidThreshold
	}
	return o, nil
}

// FileWarning is a non-fatal per-file problem recorded during a pass.
type FileWarning struct {
	Name   string
	Reason string
	Err    error
}

// GroupingReport summarizes one grouping pass.
type GroupingReport struct {
	Folder                string
	TotalImagesConsidered int // files with a recognized extension
	GroupCount            int
	Groups                []Group
	Warnings              []FileWarning
	Moved                 int
	Skipped               []string // members left in place because the destination existed
	DryRun                bool
}

func (r *GroupingReport) warn(name string, err error) {
	reason := err.Error()
	var de *DecodeError
	var me *MoveError
	switch {
	case errors.As(err, &de):
		reason = de.Err.Error()
	case errors.As(err, &me):
		reason = me.Err.Error()
	}
	r.Warnings = append(r.Warnings, FileWarning{Name: name, Reason: reason, Err: err})
}

// GroupImages groups the images directly inside folder using a Config with
// default settings. See Config.GroupImages.
func GroupImages(ctx context.Context, folder string, opts GroupOpts) (*GroupingReport, error) {
	cfg := &Config{Folder: folder}
	return cfg.GroupImages(ctx, opts)
}

// GroupImages fingerprints every top-level image in cfg.Folder, in
// lexicographic filename order, assigns each to a group and moves group
// members into group_<id> subfolders. Subdirectories are not scanned, so a
// second pass over an already grouped folder finds nothing to do.
//
// Missing or unreadable folders, invalid options, a busy lock and context
// cancellation are fatal. Undecodable files and failed moves are recorded in
// the report and the pass continues.
func (cfg *Config) GroupImages(ctx context.Context, opts GroupOpts) (*GroupingReport, error) {
	cfg.defaults()

	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	folder := cfg.Folder
	if err := checkFolder(folder); err != nil {
		return nil, err
	}

	unlock, err := cfg.lockFolder(ctx, folder)
	if err != nil {
		return nil, err
	}
	defer unlock()

	names, err := listImages(folder)
	if err != nil {
		return nil, err
	}

	report := &GroupingReport{
		Folder:                folder,
		TotalImagesConsidered: len(names),
		DryRun:                opts.DryRun,
	}
	grouper := NewGrouper(opts.Threshold)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fp, err := FingerprintFile(filepath.Join(folder, name), opts.HashSize)
		if err != nil {
			cfg.Logger.Warn("imagegroup: could not process image", "file", name, "error", err)
			report.warn(name, err)
			continue
		}

		id, err := grouper.Assign(name, fp)
		if err != nil {
			report.warn(name, err)
			continue
		}
		cfg.Logger.Debug("imagegroup: assigned", "file", name, "group", id, "hash", fp.String())
	}

	report.Groups = grouper.Groups()
	report.GroupCount = len(report.Groups)

	if !opts.DryRun {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg.moveGroups(folder, report, opts.Conflict)
	}

	cfg.Logger.Info("imagegroup: grouped images",
		"folder", folder,
		"images", report.TotalImagesConsidered,
		"groups", report.GroupCount,
		"warnings", len(report.Warnings),
		"dry_run", opts.DryRun,
	)
	return report, nil
}

// checkFolder verifies that folder exists and is a directory.
func checkFolder(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return &FolderError{Path: folder, Err: err}
	}
	if !info.IsDir() {
		return &FolderError{Path: folder, Err: errors.New("not a directory")}
	}
	return nil
}

// listImages returns the regular files directly inside folder that carry a
// recognized image extension, sorted by filename.
func listImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, &FolderError{Path: folder, Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		if IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
