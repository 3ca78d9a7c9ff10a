// Package testutils holds helpers shared by the tests of several packages.
package testutils

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spot-validator/spot-validator/internal/fileutils"
)

// CopyFile copies a file from source to destination.
func CopyFile(t *testing.T, src, dst string) error {
	t.Helper()

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return fileutils.AtomicWrite(dst, data)
}

// CopyDir copies the contents of a payload directory to another directory.
// Symlinks are followed.
func CopyDir(t *testing.T, srcDir, dstDir string) error {
	t.Helper()

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dstDir, relPath)
		if d.IsDir() {
			return os.MkdirAll(dstPath, 0700)
		}
		return CopyFile(t, path, dstPath)
	})
}

// GetDirContents returns the files of dir as a map of slash separated relative paths to contents.
// Line endings are normalized. Reading fails when a file is nested deeper than maxDepth.
func GetDirContents(t *testing.T, dir string, maxDepth int) (map[string]string, error) {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if depth := bytes.Count([]byte(relPath), []byte("/")) + 1; depth > maxDepth {
			return fmt.Errorf("max depth %d exceeded at %s", maxDepth, relPath)
		}
		if d.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[relPath] = string(bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")))
		return nil
	})

	return files, err
}
