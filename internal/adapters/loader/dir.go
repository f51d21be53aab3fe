package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// IsSnapshotFile reports whether name has a supported extension and is not
// hidden or an editor temp file.
func IsSnapshotFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	_, ok := FormatOf(base)
	return ok
}

// LoadDir decodes every snapshot file directly under dir, sorted by week.
func LoadDir(dir string) ([]WeekFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]WeekFile, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSnapshotFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		wf, err := DecodeFile(path)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[wf.Week]; dup {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateWeek, wf.Week, other, path)
		}
		seen[wf.Week] = path
		files = append(files, wf)
	}

	slices.SortFunc(files, func(a, b WeekFile) int { return strings.Compare(a.Week, b.Week) })
	return files, nil
}
