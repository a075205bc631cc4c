package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TillBeemelmanns/keras-cv/internal/core"
	"github.com/TillBeemelmanns/keras-cv/internal/versionfile"
)

// overrides captures the pre-build contents of the version and metadata
// files so they can be restored unconditionally after a build attempt,
// whether it succeeded or not. The invariant: after restore, both files are
// byte-identical to their captured state.
type overrides struct {
	fs core.FileSystem

	versionPath      string
	metadataPath     string
	originalVersion  []byte
	originalMetadata []byte
}

// captureOverrides snapshots both files before any mutation.
func captureOverrides(ctx context.Context, fs core.FileSystem, versionPath, metadataPath string) (*overrides, error) {
	originalVersion, err := fs.ReadFile(ctx, versionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read version file %q: %w", versionPath, err)
	}
	originalMetadata, err := fs.ReadFile(ctx, metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %q: %w", metadataPath, err)
	}
	return &overrides{
		fs:               fs,
		versionPath:      versionPath,
		metadataPath:     metadataPath,
		originalVersion:  originalVersion,
		originalMetadata: originalMetadata,
	}, nil
}

// applyNightly rewrites the version declaration to nightlyVersion and
// renames the package declaration in the metadata file.
func (o *overrides) applyNightly(ctx context.Context, writer *versionfile.Writer, src versionfile.Source, nightlyVersion, packageName, nightlyName string) error {
	if err := writer.Write(ctx, src, nightlyVersion); err != nil {
		return err
	}

	needle := fmt.Sprintf("name=%q", packageName)
	replacement := fmt.Sprintf("name=%q", nightlyName)
	patched := strings.ReplaceAll(string(o.originalMetadata), needle, replacement)
	if err := o.fs.WriteFile(ctx, o.metadataPath, []byte(patched), core.PermOwnerRW); err != nil {
		return fmt.Errorf("failed to write metadata file %q: %w", o.metadataPath, err)
	}
	return nil
}

// restore writes back the captured contents of both files. Both writes are
// attempted even if the first fails.
func (o *overrides) restore(ctx context.Context) error {
	versionErr := o.fs.WriteFile(ctx, o.versionPath, o.originalVersion, core.PermOwnerRW)
	metadataErr := o.fs.WriteFile(ctx, o.metadataPath, o.originalMetadata, core.PermOwnerRW)
	return errors.Join(versionErr, metadataErr)
}
