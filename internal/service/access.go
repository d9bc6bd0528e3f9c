package service

import "docvault/internal/domain/models"

// Action is a requested operation on a folder or file.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
)

// The access evaluator derives a principal's effective permission on a
// target. It assumes the target exists and purely computes allow/deny;
// not-found is the caller's concern and surfaces as a separate error.
//
// Rule order, first match wins:
//  1. superadmin/admin allow unconditionally.
//  2. The global canUpload/canDownload flag is a master switch for the
//     ambient (membership-based) route and is checked before any group
//     permission lookup.
//  3. Folder targets: any permission entry matching one of the
//     principal's groups with the action flag set grants access
//     (OR-semantics across groups). No entry means deny - there is no
//     default allow.
//  4. File targets (download): ambient route is membership in the
//     owning group gated by the global flag; an explicit per-user entry
//     is an independent grant that the global flag does not veto.

// CanAccessFolder evaluates action against a folder's group permission
// entries.
func CanAccessFolder(p *models.Principal, action Action, folder *models.Folder) bool {
	if p.IsAdmin() {
		return true
	}

	if !globalFlagAllows(p, action) {
		return false
	}

	for _, perm := range folder.Permissions {
		if !p.InGroup(perm.GroupID) {
			continue
		}
		if permissionAllows(action, perm.CanUpload, perm.CanDownload) {
			return true
		}
	}
	return false
}

// CanDownloadFile evaluates download access on a file. Upload never
// targets an existing file, so download is the only file action.
func CanDownloadFile(p *models.Principal, file *models.File) bool {
	if p.IsAdmin() {
		return true
	}

	// Ambient route: membership in the owning group, gated by the
	// global flag.
	if p.CanDownload && p.InGroup(file.GroupID) {
		return true
	}

	// Explicit per-user grant. Deliberately not gated by p.CanDownload:
	// the global flag only vetoes the ambient route.
	for _, perm := range file.Permissions {
		if perm.UserID == p.UserID && perm.CanDownload {
			return true
		}
	}
	return false
}

// CanUploadToGroup evaluates the ambient upload route for a group
// target: membership gated by the global flag. Used when resolving an
// upload destination before any folder record is involved.
func CanUploadToGroup(p *models.Principal, groupID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.CanUpload && p.InGroup(groupID)
}

func globalFlagAllows(p *models.Principal, action Action) bool {
	switch action {
	case ActionUpload:
		return p.CanUpload
	case ActionDownload:
		return p.CanDownload
	}
	return false
}

func permissionAllows(action Action, canUpload, canDownload bool) bool {
	switch action {
	case ActionUpload:
		return canUpload
	case ActionDownload:
		return canDownload
	}
	return false
}
