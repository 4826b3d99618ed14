package wordset

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileStore reads word lists from plain text files, one word per line.
// Blank lines and lines starting with '#' are ignored. An empty path
// yields an empty list; a missing file is an error.
type FileStore struct {
	badPath     string
	allowedPath string
}

func NewFileStore(badPath, allowedPath string) *FileStore {
	return &FileStore{badPath: badPath, allowedPath: allowedPath}
}

// Paths returns the configured files, for change watching.
func (s *FileStore) Paths() []string {
	var out []string
	for _, p := range []string{s.badPath, s.allowedPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *FileStore) BadWords(ctx context.Context) ([]string, error) {
	return ReadWordFile(s.badPath)
}

func (s *FileStore) AllowedWords(ctx context.Context) ([]string, error) {
	return ReadWordFile(s.allowedPath)
}

// ReadWordFile parses a word list file.
func ReadWordFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open word file")
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return out, nil
}
