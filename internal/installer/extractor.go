package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"alumni-setup/internal/logger"
)

var (
	// ErrUnsupportedArchive is returned for file names without a known archive suffix.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	// ErrUnsafePath is returned when an archive entry would land outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
)

// archiveSuffixes lists every suffix ExtractArchive understands.
var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"}

// IsArchive reports whether name has a supported archive suffix.
func IsArchive(name string) bool {
	for _, ext := range archiveSuffixes {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return true
		}
	}
	return false
}

// ExtractArchive routes to the extraction function matching the archive
// type and returns the number of regular files written under dest.
func ExtractArchive(src, dest string) (int, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("compression type is zip")
		return extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("compression type is .7z")
		return extract7z(src, dest)
	case IsArchive(lower):
		logger.Debug("compression type is .tar.*")
		return extractTarArchive(src, dest)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedArchive, src)
	}
}

// entryPath joins an archive entry name onto dest, refusing names that
// resolve outside of it ("../", absolute paths).
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// writeEntry creates target (and its parents) and copies r into it.
func writeEntry(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(src, dest string) (int, error) {
	logger.Debug("uncompressing %s to %s", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return 0, err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	files := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break // End of archive
		}
		if err != nil {
			return files, err
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return files, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode()); err != nil {
				return files, err
			}
			files++
		default:
			logger.Debug("skipping tar entry %s of type %c", hdr.Name, hdr.Typeflag)
		}
	}
	return files, nil
}

// extractZip extracts a .zip archive
func extractZip(src, dest string) (int, error) {
	r, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return 0, fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return 0, err
	}
	defer r.Close()

	files := 0
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return files, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return files, err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(src, dest string) (int, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	files := 0
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return files, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return files, err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}
