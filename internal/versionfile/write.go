package versionfile

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"
)

// Writer rewrites version declarations in source files.
type Writer struct {
	fs core.FileSystem
}

// NewWriter creates a new Writer with the given filesystem.
func NewWriter(fs core.FileSystem) *Writer {
	return &Writer{fs: fs}
}

// Write replaces the version declared by the given source with version.
// Only the declaration itself is rewritten; all surrounding content is
// preserved byte for byte.
func (w *Writer) Write(ctx context.Context, src Source, version string) error {
	if src.Path == "" {
		return fmt.Errorf("file path is required")
	}

	if !src.Format.IsValid() {
		return fmt.Errorf("invalid format: %s", src.Format)
	}

	switch src.Format {
	case FormatRegex:
		return w.writeRegex(ctx, src.Path, src.pattern(), version)
	case FormatTOML:
		return w.writeTOML(ctx, src.Path, src.Field, version)
	case FormatJSON:
		return w.writeJSON(ctx, src.Path, src.Field, version)
	case FormatRaw:
		return w.writeRaw(ctx, src.Path, version)
	default:
		return fmt.Errorf("unsupported format: %s", src.Format)
	}
}

// writeRegex replaces the captured group of the first pattern match.
func (w *Writer) writeRegex(ctx context.Context, path, pattern, version string) error {
	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	if !re.Match(data) {
		return fmt.Errorf("pattern %q does not match contents of %q", pattern, path)
	}

	updated := re.ReplaceAllFunc(data, func(match []byte) []byte {
		submatches := re.FindSubmatch(match)
		if len(submatches) < 2 {
			return match
		}
		return []byte(strings.Replace(string(match), string(submatches[1]), version, 1))
	})

	if err := w.fs.WriteFile(ctx, path, updated, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}

	return nil
}

// writeTOML writes a version field in a TOML file.
func (w *Writer) writeTOML(ctx context.Context, path, field, version string) error {
	if field == "" {
		return fmt.Errorf("field is required for TOML format")
	}

	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to parse TOML in %q: %w", path, err)
	}

	if err := setNestedValue(obj, field, version); err != nil {
		return fmt.Errorf("in file %q: %w", path, err)
	}

	updated, err := toml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal TOML for %q: %w", path, err)
	}

	if err := w.fs.WriteFile(ctx, path, updated, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}

	return nil
}

// writeJSON writes a version field using sjson to preserve formatting.
func (w *Writer) writeJSON(ctx context.Context, path, field, version string) error {
	if field == "" {
		return fmt.Errorf("field is required for JSON format")
	}

	data, err := w.fs.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}

	// sjson updates only the specified field, preserving structure and field order
	updated, err := sjson.SetBytes(data, field, version)
	if err != nil {
		return fmt.Errorf("failed to set version in %q: %w", path, err)
	}

	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}

	if err := w.fs.WriteFile(ctx, path, updated, core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}

	return nil
}

// writeRaw writes the version as the entire file contents.
func (w *Writer) writeRaw(ctx context.Context, path, version string) error {
	content := version
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if err := w.fs.WriteFile(ctx, path, []byte(content), core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write file %q: %w", path, err)
	}

	return nil
}

// setNestedValue sets a value in a nested map using dot notation.
// Example: "tool.poetry.version" sets obj["tool"]["poetry"]["version"] = value
func setNestedValue(obj map[string]any, field string, value any) error {
	if field == "" {
		return fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := obj

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]

		next, exists := current[part]
		if !exists {
			newMap := make(map[string]any)
			current[part] = newMap
			current = newMap
			continue
		}

		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i+1], "."), part)
		}

		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}
