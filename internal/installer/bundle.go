package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"alumni-setup/internal/logger"
)

// UnpackBundle extracts the application release archive into workDir.
// source is either a local path or an http(s) URL. Remote archives are
// downloaded into a temporary directory that is removed afterwards, so the
// working directory only ever receives the extracted files.
//
// Errors are logged, not returned: like every installer step, UnpackBundle
// reports success or failure and lets the orchestrator carry on.
func UnpackBundle(ctx context.Context, source, workDir string) bool {
	logger.Info("Unpacking application bundle %s...", source)

	if err := unpackBundle(ctx, source, workDir); err != nil {
		logger.Error("Failed to unpack bundle: %v", err)
		return false
	}
	return true
}

func unpackBundle(ctx context.Context, source, workDir string) error {
	archive := source
	if isURL(source) {
		// Create a scratch directory for the download
		tmpDir, err := os.MkdirTemp("", "alumni-setup-bundle-")
		if err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
		// Remove the downloaded archive once it has been extracted (or failed to)
		defer os.RemoveAll(tmpDir)

		// Keep the remote file name so the archive type can be detected.
		archive = filepath.Join(tmpDir, remoteFileName(source))
		if err := downloadFile(ctx, source, archive); err != nil {
			return err
		}
	}

	// Refuse anything ExtractArchive cannot route, before touching workDir
	if !IsArchive(archive) {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, archive)
	}
	info, err := os.Stat(archive)
	if err != nil {
		return err
	}
	logger.Debug("Bundle size: %s", humanize.Bytes(uint64(info.Size())))

	// The working directory may not exist yet on a fresh host
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("cannot create working directory: %w", err)
	}
	files, err := ExtractArchive(archive, workDir)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", archive, err)
	}
	logger.Success("Extracted %d files (%s) into %s", files, humanize.Bytes(uint64(info.Size())), workDir)
	return nil
}
