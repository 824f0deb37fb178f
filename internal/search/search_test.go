package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineserve/lineserve/internal/core"
	"github.com/lineserve/lineserve/internal/testkit"
)

func TestSearch_ExactMatch(t *testing.T) {
	path := testkit.WriteSearchFile(t, "apple", "banana", "cherry")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "banana")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Search(context.Background(), path, "fig")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearch_CaseSensitive(t *testing.T) {
	path := testkit.WriteSearchFile(t, "apple", "banana", "cherry")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "Banana")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearch_NoSubstringMatch(t *testing.T) {
	path := testkit.WriteSearchFile(t, "banana split")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "banana")
	require.NoError(t, err)
	assert.False(t, found, "a substring of a line must not match")
}

func TestSearch_TrailingWhitespacePreserved(t *testing.T) {
	path := testkit.WriteSearchFile(t, "banana  ")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "banana")
	require.NoError(t, err)
	assert.False(t, found, "trailing spaces are part of the line")

	found, err = s.Search(context.Background(), path, "banana  ")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSearch_CRLFTerminators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple\r\nbanana\r\n"), 0644))
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "banana")
	require.NoError(t, err)
	assert.True(t, found, "only the terminator is stripped, including the CR")
}

func TestSearch_EmptyFile(t *testing.T) {
	path := testkit.WriteSearchFile(t)
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "anything")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.Search(context.Background(), path, "")
	require.NoError(t, err)
	assert.False(t, found, "empty query does not match an empty file")
}

func TestSearch_EmptyQueryMatchesEmptyLine(t *testing.T) {
	path := testkit.WriteSearchFile(t, "apple", "", "cherry")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSearch_UnterminatedLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple\nbanana"), 0644))
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "banana")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSearch_MissingFile(t *testing.T) {
	s := &FileScanner{}

	found, err := s.Search(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "anything")
	assert.False(t, found)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFileAccess))
}

func TestSearch_Idempotent(t *testing.T) {
	path := testkit.WriteSearchFile(t, "apple", "banana", "cherry")
	s := &FileScanner{}

	for i := 0; i < 10; i++ {
		found, err := s.Search(context.Background(), path, "cherry")
		require.NoError(t, err)
		assert.True(t, found)
	}
}

func TestSearch_ObservesRewrite(t *testing.T) {
	path := testkit.WriteSearchFile(t, "apple")
	s := &FileScanner{}

	found, err := s.Search(context.Background(), path, "durian")
	require.NoError(t, err)
	assert.False(t, found)

	testkit.OverwriteSearchFile(t, path, "durian")

	found, err = s.Search(context.Background(), path, "durian")
	require.NoError(t, err)
	assert.True(t, found, "each search must re-read the file")
}

func TestSearch_CancelledContext(t *testing.T) {
	lines := make([]string, 10000)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%06d", i)
	}
	path := testkit.WriteSearchFile(t, lines...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &FileScanner{}
	_, err := s.Search(ctx, path, "absent")
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkSearch(b *testing.B) {
	lines := make([]string, 250000)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%06d", i)
	}
	path := testkit.WriteSearchFile(b, lines...)
	s := &FileScanner{}
	query := lines[len(lines)-1]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Search(context.Background(), path, query); err != nil {
			b.Fatal(err)
		}
	}
}
