// Package versionfile reads and rewrites version declarations embedded in
// package source files. It supports regex extraction from Python sources
// (the `__version__ = "..."` convention), dot-notation fields in TOML and
// JSON metadata files, and raw single-value files. Rewrites touch only the
// version declaration itself, leaving the rest of the file byte-identical.
package versionfile
