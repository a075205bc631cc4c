// Package core provides shared abstractions used across the kcv packages,
// most notably the FileSystem interface that makes file-touching code
// testable without a real disk.
package core

import (
	"context"
	"io/fs"
	"os"
)

// FileMode is the permission type used across filesystem operations.
type FileMode = os.FileMode

const (
	// PermOwnerRW is the default permission for generated files (0644).
	PermOwnerRW FileMode = 0o644

	// PermDir is the default permission for created directories (0755).
	PermDir FileMode = 0o755
)

// FileSystem abstracts filesystem operations for testability.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm FileMode) error
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
	MkdirAll(ctx context.Context, path string, perm FileMode) error
}

// OSFileSystem implements FileSystem using the real operating system.
type OSFileSystem struct{}

// NewOSFileSystem returns the production FileSystem implementation.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Verify OSFileSystem implements FileSystem.
var _ FileSystem = (*OSFileSystem)(nil)

func (o *OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (o *OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (o *OSFileSystem) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (o *OSFileSystem) MkdirAll(ctx context.Context, path string, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}
