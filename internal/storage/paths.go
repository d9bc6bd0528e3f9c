package storage

import (
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/domain"
)

// Store maps logical group/folder locations onto a physical directory
// tree under a fixed root: <root>/<groupName>/<sanitized subpath>.
type Store struct {
	root string
}

// New creates a store rooted at dir. The root itself is created lazily
// by the first resolve.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// SanitizeSubPath reduces a caller-supplied logical sub-path to safe
// segments: splits on "/", drops empty, "." and ".." segments, and
// rejoins. Sanitization is total - the worst case collapses to "",
// which resolves to the group root. No input can escape the root.
func SanitizeSubPath(sub string) string {
	parts := strings.Split(sub, "/")
	segments := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		segments = append(segments, p)
	}
	return strings.Join(segments, "/")
}

// ResolvePhysicalDir maps (groupName, logicalSubPath) to the physical
// directory and ensures it exists. This is the one place the resolver
// mutates the filesystem; resolving the same arguments twice is
// idempotent.
func (s *Store) ResolvePhysicalDir(groupName, subPath string) (string, error) {
	dir := s.PhysicalDir(groupName, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.StorageError{Op: "mkdir", Err: err}
	}
	return dir, nil
}

// PhysicalDir maps (groupName, logicalSubPath) to the physical directory
// without creating it. A missing directory is "not yet materialized",
// not corruption - callers recreate it via ResolvePhysicalDir.
func (s *Store) PhysicalDir(groupName, subPath string) string {
	clean := SanitizeSubPath(subPath)
	if clean == "" {
		return filepath.Join(s.root, groupName)
	}
	return filepath.Join(s.root, groupName, filepath.FromSlash(clean))
}

// PhysicalFilePath re-derives the on-disk location of a file from its
// group's name and its logical path ("/<group>/<sub...>/<name>"). The
// leading group segment in the logical path is dropped in favor of the
// authoritative group name, so a stale path prefix after a group rename
// cannot point outside the group's subtree.
func (s *Store) PhysicalFilePath(groupName, logicalPath string) string {
	segments := strings.Split(strings.Trim(logicalPath, "/"), "/")
	if len(segments) <= 1 {
		return filepath.Join(s.root, groupName)
	}
	rest := SanitizeSubPath(strings.Join(segments[1:], "/"))
	return filepath.Join(s.root, groupName, filepath.FromSlash(rest))
}

// Exists reports whether the given physical path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveFile deletes a single file from a physical directory. Used to
// release a reserved name when the upload's record cannot be written.
func (s *Store) RemoveFile(dir, name string) {
	os.Remove(filepath.Join(dir, name))
}

// RenameGroupDir renames a group's physical directory after a group
// rename, keeping the logical and physical trees aligned. A missing
// source directory is fine - it has simply never been materialized.
func (s *Store) RenameGroupDir(oldName, newName string) error {
	oldDir := filepath.Join(s.root, oldName)
	newDir := filepath.Join(s.root, newName)
	if _, err := os.Stat(oldDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return &domain.StorageError{Op: "rename", Err: err}
	}
	return nil
}

// LogicalPath builds the canonical forward-slash path stored on a
// record: "/<group>/<sub...>/<name>", omitting empty segments.
func LogicalPath(groupName, subPath, name string) string {
	segments := []string{groupName}
	if clean := SanitizeSubPath(subPath); clean != "" {
		segments = append(segments, clean)
	}
	if name != "" {
		segments = append(segments, name)
	}
	return "/" + strings.Join(segments, "/")
}
