package versionfile

// DefaultPattern extracts the version from a Python `__version__`
// declaration, such as the one in keras_cv/src/version_utils.py.
const DefaultPattern = `__version__\s*=\s*["'](.+?)["']`

// Format represents the supported source formats for version declarations.
type Format string

const (
	// FormatRegex is for source files requiring regex extraction
	// (version_utils.py, setup.py, etc.).
	FormatRegex Format = "regex"

	// FormatTOML is for TOML files (pyproject.toml).
	FormatTOML Format = "toml"

	// FormatJSON is for JSON metadata files.
	FormatJSON Format = "json"

	// FormatRaw is for plain text files where the entire content is the version.
	FormatRaw Format = "raw"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatRegex, FormatTOML, FormatJSON, FormatRaw:
		return true
	default:
		return false
	}
}

// ParseFormat converts a string to a Format, returning FormatRegex as fallback.
func ParseFormat(s string) Format {
	f := Format(s)
	if f.IsValid() {
		return f
	}
	return FormatRegex
}

// Source describes where and how a version declaration lives in a file.
type Source struct {
	// Path is the file path (absolute or relative).
	Path string

	// Format specifies the file format.
	Format Format

	// Field is the dot-notation path to the version field (for TOML/JSON).
	// Example: "project.version", "tool.poetry.version"
	Field string

	// Pattern is the regex pattern for regex format. Must contain a
	// capturing group for the version. Empty means DefaultPattern.
	Pattern string
}

// pattern returns the effective regex pattern for the source.
func (s Source) pattern() string {
	if s.Pattern == "" {
		return DefaultPattern
	}
	return s.Pattern
}
