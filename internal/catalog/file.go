package catalog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"despesas/internal/core"
)

// headerMarker prefixes section-header lines in a category listing file.
const headerMarker = "dre:"

// FileSource reads categories from a line-delimited UTF-8 text file: one
// category name per non-empty line, "DRE:"-prefixed header lines excluded
// (case-insensitive). A missing or unreadable file is an error, never an
// empty catalog.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]core.Category, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.path, err)
	}
	defer f.Close()

	var cats []core.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), headerMarker) {
			continue
		}
		cats = append(cats, core.Category{Name: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.path, err)
	}
	return cats, nil
}
