package models

import "time"

// Roles, in descending order of privilege.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is an account. CanUpload/CanDownload are the global master
// switches for the ambient membership-based grant; they do not veto
// explicit per-file permissions. PasswordHash never serializes.
type User struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"` // unique
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	GroupIDs     []string   `json:"groups" db:"group_ids"`
	CanUpload    bool       `json:"can_upload" db:"can_upload"`
	CanDownload  bool       `json:"can_download" db:"can_download"`
	Favorites    []Favorite `json:"favorites" db:"favorites"`
	IsArchived   bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// InGroup reports whether the user belongs to the given group.
func (u *User) InGroup(groupID string) bool {
	for _, id := range u.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
