package versionfile

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/pelletier/go-toml/v2"
)

// Reader extracts version strings from source files.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Read extracts the version string declared by the given source.
func (r *Reader) Read(ctx context.Context, src Source) (string, error) {
	if src.Path == "" {
		return "", fmt.Errorf("file path is required")
	}

	if !src.Format.IsValid() {
		return "", fmt.Errorf("invalid format: %s", src.Format)
	}

	data, err := r.fs.ReadFile(ctx, src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", src.Path, err)
	}

	switch src.Format {
	case FormatRegex:
		return readRegex(data, src.Path, src.pattern())
	case FormatTOML:
		return readTOML(data, src.Path, src.Field)
	case FormatJSON:
		return readJSON(data, src.Path, src.Field)
	case FormatRaw:
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", src.Format)
	}
}

// readRegex extracts a version using a regex pattern with a capturing group.
func readRegex(data []byte, path, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	matches := re.FindSubmatch(data)
	if len(matches) < 2 {
		return "", fmt.Errorf("no version match found in %q (pattern %q must have a capturing group)", path, pattern)
	}

	return string(matches[1]), nil
}

// readTOML extracts a version from TOML data using dot notation for the field path.
func readTOML(data []byte, path, field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for TOML format")
	}

	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("failed to parse TOML in %q: %w", path, err)
	}

	value, err := getNestedValue(obj, field)
	if err != nil {
		return "", fmt.Errorf("in file %q: %w", path, err)
	}

	version, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in %q is not a string", field, path)
	}

	return version, nil
}

// readJSON extracts a version from JSON data using dot notation for the field path.
func readJSON(data []byte, path, field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for JSON format")
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("failed to parse JSON in %q: %w", path, err)
	}

	value, err := getNestedValue(obj, field)
	if err != nil {
		return "", fmt.Errorf("in file %q: %w", path, err)
	}

	version, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in %q is not a string", field, path)
	}

	return version, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "tool.poetry.version" accesses obj["tool"]["poetry"]["version"]
func getNestedValue(obj map[string]any, field string) (any, error) {
	if field == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("field %q not found", field)
		}

		current = value
	}

	return current, nil
}
