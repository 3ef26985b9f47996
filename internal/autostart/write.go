package autostart

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a truncated artifact behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	// The temporary file lives in the target directory so the final rename
	// never crosses file systems
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	// Leave no temporary file behind on failure
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	// Replace the target in one step
	return os.Rename(tmp.Name(), path)
}
