package models

import "time"

// FolderPermission grants a group upload/download rights on a folder.
type FolderPermission struct {
	GroupID     string `json:"group_id"`
	CanUpload   bool   `json:"can_upload"`
	CanDownload bool   `json:"can_download"`
}

// Folder is a node in a group's logical tree. Path is the materialized
// logical location ("/<group>/<sub...>/<name>"), stored denormalized for
// prefix-anchored child listing. ParentID is nil only for the group's
// root folder.
type Folder struct {
	ID          string             `json:"id" db:"id"`
	Name        string             `json:"name" db:"name"`
	Path        string             `json:"path" db:"path"`
	ParentID    *string            `json:"parent_folder_id" db:"parent_id"`
	GroupID     string             `json:"group_id" db:"group_id"`
	Permissions []FolderPermission `json:"permissions" db:"permissions"`
	IsArchived  bool               `json:"is_archived" db:"is_archived"`
	ArchivedAt  *time.Time         `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}
