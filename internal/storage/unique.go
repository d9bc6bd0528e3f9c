package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/domain"
)

// candidate returns the nth probe for a desired filename:
// "base.ext", "base (1).ext", "base (2).ext", ...
func candidate(base, ext string, n int) string {
	if n == 0 {
		return base + ext
	}
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

// splitName separates a filename into base and extension.
func splitName(name string) (base, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// UniqueName probes the directory for the first collision-free variant
// of desiredName. The probe alone is advisory - only CreateExclusive
// actually reserves the name. Unbounded search; terminates on the first
// absent candidate.
func UniqueName(dir, desiredName string) (string, error) {
	base, ext := splitName(desiredName)
	for n := 0; ; n++ {
		name := candidate(base, ext, n)
		_, err := os.Stat(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", &domain.StorageError{Op: "stat", Err: err}
		}
	}
}

// CreateExclusive reserves a collision-free filename in dir and streams
// content into it, returning the final name and byte count.
//
// The reservation uses O_CREATE|O_EXCL so two concurrent uploads of the
// same desired name can never both observe "absent" and overwrite each
// other: the loser of the race gets EEXIST and retries the next counter.
func CreateExclusive(dir, desiredName string, content io.Reader) (string, int64, error) {
	if desiredName == "" || desiredName == "." || desiredName == ".." ||
		desiredName != filepath.Base(desiredName) {
		return "", 0, &domain.StorageError{Op: "create", Err: fmt.Errorf("invalid file name %q", desiredName)}
	}

	base, ext := splitName(desiredName)
	for n := 0; ; n++ {
		name := candidate(base, ext, n)
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", 0, &domain.StorageError{Op: "create", Err: err}
		}

		size, err := io.Copy(f, content)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// Partial write: drop the reservation rather than leave a
			// truncated file behind.
			os.Remove(filepath.Join(dir, name))
			return "", 0, &domain.StorageError{Op: "write", Err: err}
		}
		return name, size, nil
	}
}
