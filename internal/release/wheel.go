package release

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// selectWheel picks the wheel in dir for the given version: the most
// recently modified *.whl whose name contains the version string, falling
// back to the most recently modified wheel overall. It returns "" when the
// directory is missing or holds no wheels.
//
// Note: the fallback can pick an unrelated stale wheel if old build outputs
// remain in dir.
func selectWheel(dir, version string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read wheels directory %q: %w", dir, err)
	}

	type wheel struct {
		path    string
		modTime int64
	}
	var wheels []wheel
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".whl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("failed to stat wheel %q: %w", entry.Name(), err)
		}
		wheels = append(wheels, wheel{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(wheels) == 0 {
		return "", nil
	}

	sort.Slice(wheels, func(i, j int) bool {
		return wheels[i].modTime > wheels[j].modTime
	})

	for _, w := range wheels {
		if strings.Contains(filepath.Base(w.path), version) {
			return w.path, nil
		}
	}
	return wheels[0].path, nil
}

// copyWheel copies src into dstDir, preserving the filename, permissions,
// and modification time of the source.
func copyWheel(src, dstDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", src, err)
	}

	dst := filepath.Join(dstDir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to copy %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %q: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("failed to preserve timestamps on %q: %w", dst, err)
	}
	return dst, nil
}
