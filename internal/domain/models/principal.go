package models

// Principal is the authenticated caller's effective identity for one
// request: role, group memberships and the global upload/download
// switches. It is rebuilt from the user record on every request so
// revoked flags take effect immediately, not at token expiry.
type Principal struct {
	UserID      string
	Role        string
	GroupIDs    []string
	CanUpload   bool
	CanDownload bool
}

// IsAdmin reports whether the principal bypasses per-resource checks.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleSuperadmin || p.Role == RoleAdmin
}

// InGroup reports whether the principal belongs to the given group.
func (p *Principal) InGroup(groupID string) bool {
	for _, id := range p.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// PrincipalFromUser derives a request principal from a stored user.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		UserID:      u.ID,
		Role:        u.Role,
		GroupIDs:    u.GroupIDs,
		CanUpload:   u.CanUpload,
		CanDownload: u.CanDownload,
	}
}
