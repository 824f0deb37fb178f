// Package search implements exact full-line lookup over a plain text file.
package search

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/lineserve/lineserve/internal/core"
)

// Searcher reports whether query equals, character for character, some full
// line of the file at path. Only the line terminator is excluded from the
// comparison.
type Searcher interface {
	Search(ctx context.Context, path, query string) (bool, error)
}

const defaultMaxLineBytes = 64 * 1024

// FileScanner is a Searcher that linearly scans the file on every call,
// short-circuiting on the first match. Nothing is cached between calls: the
// file may be rewritten by an external process at any time, and each query
// must observe the content as of its own read.
type FileScanner struct {
	// MaxLineBytes bounds the scanner's line buffer. Zero means a 64 KiB
	// default. A file line exceeding the bound fails the scan as a read
	// error; queries are bounded far below this upstream.
	MaxLineBytes int
}

func (s *FileScanner) Search(ctx context.Context, path, query string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrFileAccess, err)
	}
	defer f.Close()

	maxLine := s.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), maxLine)

	for n := 0; sc.Scan(); n++ {
		// ScanLines strips the trailing \n and an optional preceding \r.
		if sc.Text() == query {
			return true, nil
		}
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrFileAccess, err)
	}
	return false, nil
}
