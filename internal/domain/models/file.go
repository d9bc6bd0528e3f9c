package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FilePermission is an explicit per-user grant on a single file. An
// explicit grant is independent of the user's global flags: it still
// applies when the ambient (group-membership) route is vetoed.
type FilePermission struct {
	UserID      string `json:"user_id"`
	CanUpload   bool   `json:"can_upload"`
	CanDownload bool   `json:"can_download"`
}

// File is one uploaded document. Name is the physical, collision-free
// filename on disk; OriginalName is what the client sent. Path is the
// logical location ("/<group>/<sub...>/<name>") from which the physical
// path is re-derived on download.
type File struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	OriginalName string           `json:"original_name" db:"original_name"`
	Path         string           `json:"path" db:"path"`
	GroupID      string           `json:"group_id" db:"group_id"`
	UploadedBy   string           `json:"uploaded_by" db:"uploaded_by"`
	FileType     string           `json:"file_type" db:"file_type"`
	Size         int64            `json:"size" db:"size"`
	UploadedOn   time.Time        `json:"uploaded_on" db:"uploaded_on"`
	Permissions  []FilePermission `json:"permissions" db:"permissions"`
	IsArchived   bool             `json:"is_archived" db:"is_archived"`
	ArchivedAt   *time.Time       `json:"archived_at,omitempty" db:"archived_at"`
}

// FormattedSize renders Size the way the UI shows it.
func (f *File) FormattedSize() string {
	return FormatSize(f.Size)
}

// MarshalJSON adds the human-readable size alongside the raw byte count.
func (f File) MarshalJSON() ([]byte, error) {
	type alias File
	return json.Marshal(struct {
		alias
		FormattedSize string `json:"formatted_size"`
	}{alias(f), FormatSize(f.Size)})
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d Bytes", bytes)
	case bytes < 1048576:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1073741824:
		return fmt.Sprintf("%.1f MB", float64(bytes)/1048576)
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/1073741824)
	}
}
