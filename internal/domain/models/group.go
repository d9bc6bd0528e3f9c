package models

import "time"

// Group is a top-level tenant owning one physical directory subtree
// under the storage root. Archiving is logical only - files stay on disk.
type Group struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"` // unique
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
