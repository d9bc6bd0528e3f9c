package storage

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"docvault/internal/domain"
)

// WriteZip streams every file under dirPath into w as a zip archive,
// preserving paths relative to dirPath. Entries are streamed file by
// file, so the archive never lives in memory as a whole.
func WriteZip(w io.Writer, dirPath string) error {
	zw := zip.NewWriter(w)

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}

		entry, err := zw.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, f)
		f.Close()
		return err
	})

	if err != nil {
		zw.Close()
		return &domain.StorageError{Op: "zip", Err: err}
	}

	return zw.Close()
}
