package imagegroup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestGrouper_FirstMatchWins(t *testing.T) {
	t.Parallel()

	g := NewGrouper(5)
	r1 := fingerprintOf(0)
	r2 := fingerprintOf(0xFF) // 8 bits away from r1: its own group
	x := fingerprintOf(0x0F)  // 4 bits from r1 and 4 bits from r2

	if id, _ := g.Assign("r1.png", r1); id != 1 {
		t.Fatalf("r1 group = %d, want 1", id)
	}
	if id, _ := g.Assign("r2.png", r2); id != 2 {
		t.Fatalf("r2 group = %d, want 2", id)
	}
	id, err := g.Assign("x.png", x)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if id != 1 {
		t.Errorf("x group = %d, want 1 (first representative within threshold)", id)
	}
}

func TestGrouper_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bits      uint64
		threshold int
		wantGroup int
	}{
		{name: "distance equals threshold merges", bits: 0b11111, threshold: 5, wantGroup: 1},
		{name: "distance threshold+1 splits", bits: 0b111111, threshold: 5, wantGroup: 2},
		{name: "zero threshold merges identical", bits: 0, threshold: 0, wantGroup: 1},
		{name: "zero threshold splits one bit", bits: 1, threshold: 0, wantGroup: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := NewGrouper(tc.threshold)
			if _, err := g.Assign("rep.png", fingerprintOf(0)); err != nil {
				t.Fatalf("Assign rep: %v", err)
			}
			id, err := g.Assign("other.png", fingerprintOf(tc.bits))
			if err != nil {
				t.Fatalf("Assign other: %v", err)
			}
			if id != tc.wantGroup {
				t.Errorf("group = %d, want %d", id, tc.wantGroup)
			}
		})
	}
}

func TestGrouper_RepresentativeIsFirstMember(t *testing.T) {
	t.Parallel()

	g := NewGrouper(2)
	first := fingerprintOf(0)
	_, _ = g.Assign("a.png", first)
	_, _ = g.Assign("b.png", fingerprintOf(0b11))  // distance 2 from a: joins
	_, _ = g.Assign("c.png", fingerprintOf(0b111)) // distance 3 from a: new group, even though 1 from b

	groups := g.Groups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Representative.String() != first.String() {
		t.Errorf("group 1 representative = %s, want %s", groups[0].Representative, first)
	}
	if !slices.Equal(groups[0].Members, []string{"a.png", "b.png"}) {
		t.Errorf("group 1 members = %v", groups[0].Members)
	}
	if !slices.Equal(groups[1].Members, []string{"c.png"}) {
		t.Errorf("group 2 members = %v", groups[1].Members)
	}
	if groups[1].Dir() != "group_2" {
		t.Errorf("Dir() = %q, want group_2", groups[1].Dir())
	}
}

func TestGrouper_NameAssignedOnce(t *testing.T) {
	t.Parallel()

	g := NewGrouper(5)
	_, _ = g.Assign("a.png", fingerprintOf(0))
	id, err := g.Assign("a.png", fingerprintOf(^uint64(0)))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if id != 1 || g.Len() != 1 {
		t.Errorf("re-assigning a name: id=%d groups=%d, want 1 and 1", id, g.Len())
	}
	if members := g.Groups()[0].Members; len(members) != 1 {
		t.Errorf("members = %v, want one entry", members)
	}
}

func TestGrouper_RejectsEmptyFingerprint(t *testing.T) {
	t.Parallel()

	g := NewGrouper(5)
	if _, err := g.Assign("a.png", Fingerprint{}); err == nil {
		t.Fatal("expected error for zero fingerprint")
	}
	if g.Len() != 0 {
		t.Errorf("no group should be created for a failed assignment")
	}
}

func TestIsImageFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"b.Png", true},
		{"c.bmp", true},
		{"d.gif", true},
		{"e.webp", false},
		{"notes.txt", false},
		{"jpg", false},
		{".hidden", false},
	}
	for _, tc := range tests {
		if got := IsImageFile(tc.name); got != tc.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseConflictPolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ConflictPolicy{"": ConflictSkip, "skip": ConflictSkip, "Rename": ConflictRename} {
		got, err := ParseConflictPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseConflictPolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseConflictPolicy("overwrite"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

// newImageFolder returns a temp folder with the given files written into it.
func newImageFolder(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		writeFile(t, dir, name, data)
	}
	return dir
}

func subdirs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to be gone", path)
	}
}

func TestGroupImages_IdenticalImagesShareGroup(t *testing.T) {
	t.Parallel()

	img := encodeJPEG(t, gradientImage(64, 64, false))
	dir := newImageFolder(t, map[string][]byte{"a.jpg": img, "b.jpg": img})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.TotalImagesConsidered != 2 || report.GroupCount != 1 {
		t.Fatalf("report = %+v, want 2 images in 1 group", report)
	}
	if !slices.Equal(report.Groups[0].Members, []string{"a.jpg", "b.jpg"}) {
		t.Errorf("members = %v", report.Groups[0].Members)
	}
	if report.Moved != 2 || len(report.Warnings) != 0 {
		t.Errorf("moved=%d warnings=%v", report.Moved, report.Warnings)
	}
	assertFile(t, filepath.Join(dir, "group_1", "a.jpg"))
	assertFile(t, filepath.Join(dir, "group_1", "b.jpg"))
	assertNoFile(t, filepath.Join(dir, "a.jpg"))
}

func TestGroupImages_DistinctImagesInListingOrder(t *testing.T) {
	t.Parallel()

	horizontal := encodePNG(t, gradientImage(64, 64, false))
	vertical := encodePNG(t, gradientImage(64, 64, true))
	dir := newImageFolder(t, map[string][]byte{
		"z_horizontal.png": horizontal,
		"a_vertical.png":   vertical,
		"m_vertical.PNG":   vertical,
	})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.GroupCount != 2 {
		t.Fatalf("GroupCount = %d, want 2", report.GroupCount)
	}
	// Lexicographic listing: a_vertical.png is seen first and founds group 1.
	if !slices.Equal(report.Groups[0].Members, []string{"a_vertical.png", "m_vertical.PNG"}) {
		t.Errorf("group 1 = %v", report.Groups[0].Members)
	}
	if !slices.Equal(report.Groups[1].Members, []string{"z_horizontal.png"}) {
		t.Errorf("group 2 = %v", report.Groups[1].Members)
	}
	assertFile(t, filepath.Join(dir, "group_2", "z_horizontal.png"))
}

func TestGroupImages_CorruptFileIsWarnedAndLeftInPlace(t *testing.T) {
	t.Parallel()

	dir := newImageFolder(t, map[string][]byte{
		"bad.png":  []byte("\x89PNG\r\n\x1a\ntruncated"),
		"good.jpg": encodeJPEG(t, gradientImage(32, 32, false)),
	})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.TotalImagesConsidered != 2 {
		t.Errorf("TotalImagesConsidered = %d, want 2", report.TotalImagesConsidered)
	}
	if report.GroupCount != 1 {
		t.Errorf("GroupCount = %d, want 1", report.GroupCount)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Name != "bad.png" {
		t.Fatalf("Warnings = %+v, want one for bad.png", report.Warnings)
	}
	if report.Warnings[0].Reason == "" || !errors.Is(report.Warnings[0].Err, ErrDecode) {
		t.Errorf("warning = %+v, want a decode reason", report.Warnings[0])
	}
	assertFile(t, filepath.Join(dir, "bad.png"))
	assertFile(t, filepath.Join(dir, "group_1", "good.jpg"))
}

func TestGroupImages_ZeroAreaImageIsWarned(t *testing.T) {
	t.Parallel()

	dir := newImageFolder(t, map[string][]byte{
		"ok.png":   encodePNG(t, gradientImage(32, 32, true)),
		"zero.gif": emptyGIF(t),
	})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.TotalImagesConsidered != 2 || report.GroupCount != 1 {
		t.Errorf("considered %d, groups %d; want 2 and 1", report.TotalImagesConsidered, report.GroupCount)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Name != "zero.gif" {
		t.Fatalf("Warnings = %+v, want one for zero.gif", report.Warnings)
	}
	if !errors.Is(report.Warnings[0].Err, ErrEmptyImage) {
		t.Errorf("warning err = %v, want ErrEmptyImage", report.Warnings[0].Err)
	}
	assertFile(t, filepath.Join(dir, "zero.gif"))
	assertFile(t, filepath.Join(dir, "group_1", "ok.png"))
}

func TestGroupImages_EmptyFolder(t *testing.T) {
	t.Parallel()

	dir := newImageFolder(t, map[string][]byte{"notes.txt": []byte("hello"), "photo.webp": []byte("x")})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.TotalImagesConsidered != 0 || report.GroupCount != 0 || len(report.Warnings) != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
	if dirs := subdirs(t, dir); len(dirs) != 0 {
		t.Errorf("subfolders created: %v", dirs)
	}
}

func TestGroupImages_SecondPassIsNoop(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"one.png": img, "two.png": img})

	if _, err := GroupImages(context.Background(), dir, DefaultGroupOpts()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if report.TotalImagesConsidered != 0 || report.GroupCount != 0 || len(report.Warnings) != 0 {
		t.Errorf("second pass report = %+v, want nothing to do", report)
	}
	if dirs := subdirs(t, dir); !slices.Equal(dirs, []string{"group_1"}) {
		t.Errorf("subfolders = %v, want [group_1]", dirs)
	}
}

func TestGroupImages_ConflictSkipLeavesFile(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img})
	if err := os.Mkdir(filepath.Join(dir, "group_1"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "group_1"), "a.png", []byte("older"))

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if !slices.Equal(report.Skipped, []string{"a.png"}) || report.Moved != 0 {
		t.Errorf("Skipped=%v Moved=%d, want [a.png] and 0", report.Skipped, report.Moved)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("skip on conflict must not warn: %v", report.Warnings)
	}
	assertFile(t, filepath.Join(dir, "a.png"))
	if data, _ := os.ReadFile(filepath.Join(dir, "group_1", "a.png")); string(data) != "older" {
		t.Error("existing destination was overwritten")
	}
}

func TestGroupImages_ConflictRename(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img})
	groupDir := filepath.Join(dir, "group_1")
	if err := os.Mkdir(groupDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, groupDir, "a.png", []byte("older"))
	writeFile(t, groupDir, "a_1.png", []byte("older too"))

	opts := DefaultGroupOpts()
	opts.Conflict = ConflictRename
	report, err := GroupImages(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.Moved != 1 {
		t.Errorf("Moved = %d, want 1", report.Moved)
	}
	assertFile(t, filepath.Join(groupDir, "a_2.png"))
	assertNoFile(t, filepath.Join(dir, "a.png"))
}

func TestGroupImages_MoveFailureIsWarning(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	// A regular file named group_1 makes the group folder impossible to create.
	dir := newImageFolder(t, map[string][]byte{"a.png": img, "b.png": img, "group_1": []byte("in the way")})

	report, err := GroupImages(context.Background(), dir, DefaultGroupOpts())
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("Warnings = %+v, want one per member", report.Warnings)
	}
	for _, w := range report.Warnings {
		if !errors.Is(w.Err, ErrMove) {
			t.Errorf("warning %s: err = %v, want ErrMove", w.Name, w.Err)
		}
	}
	assertFile(t, filepath.Join(dir, "a.png"))
	assertFile(t, filepath.Join(dir, "b.png"))
}

func TestGroupImages_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img, "b.png": img})

	opts := DefaultGroupOpts()
	opts.DryRun = true
	report, err := GroupImages(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if report.GroupCount != 1 || report.Moved != 0 || !report.DryRun {
		t.Errorf("report = %+v", report)
	}
	if dirs := subdirs(t, dir); len(dirs) != 0 {
		t.Errorf("dry run created %v", dirs)
	}
	assertFile(t, filepath.Join(dir, "a.png"))
}

func TestGroupImages_FolderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "plain.txt", []byte("x"))

	for name, folder := range map[string]string{
		"missing":       filepath.Join(dir, "nope"),
		"not directory": file,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := GroupImages(context.Background(), folder, DefaultGroupOpts())
			var fe *FolderError
			if !errors.As(err, &fe) || !errors.Is(err, ErrFolder) {
				t.Fatalf("err = %v, want *FolderError", err)
			}
		})
	}
}

func TestGroupImages_InvalidOpts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := GroupImages(context.Background(), dir, GroupOpts{HashSize: 8, Threshold: -1}); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("negative threshold: err = %v", err)
	}
	if _, err := GroupImages(context.Background(), dir, GroupOpts{HashSize: -2}); !errors.Is(err, ErrInvalidHashSize) {
		t.Errorf("negative hash size: err = %v", err)
	}
}

func TestGroupImages_ZeroHashSizeUsesDefault(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img})

	report, err := GroupImages(context.Background(), dir, GroupOpts{Threshold: 5, DryRun: true})
	if err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if bits := report.Groups[0].Representative.Bits(); bits != 64 {
		t.Errorf("representative bits = %d, want 64", bits)
	}
}

func TestGroupImages_CanceledContextLeavesFolderUntouched(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := GroupImages(ctx, dir, DefaultGroupOpts()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	assertFile(t, filepath.Join(dir, "a.png"))
	if dirs := subdirs(t, dir); len(dirs) != 0 {
		t.Errorf("subfolders created: %v", dirs)
	}
}

func TestConfigGroupImages_OnMoveCallback(t *testing.T) {
	t.Parallel()

	img := encodePNG(t, splitImage(32, 32))
	dir := newImageFolder(t, map[string][]byte{"a.png": img, "b.png": img})

	var moved []string
	cfg := &Config{
		Folder: dir,
		OnMove: func(name string, groupID int) {
			if groupID != 1 {
				t.Errorf("OnMove(%s, %d): want group 1", name, groupID)
			}
			moved = append(moved, name)
		},
	}
	if _, err := cfg.GroupImages(context.Background(), DefaultGroupOpts()); err != nil {
		t.Fatalf("GroupImages: %v", err)
	}
	if !slices.Equal(moved, []string{"a.png", "b.png"}) {
		t.Errorf("OnMove calls = %v", moved)
	}
}
