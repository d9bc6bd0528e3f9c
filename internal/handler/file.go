package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/httputil"
	"docvault/internal/service"
)

// FileHandler handles upload, download and file lifecycle requests.
type FileHandler struct {
	fileService *service.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// Upload stores one multipart file into a group folder. Form fields:
// "group" (group name), "path" (sub-path, optional), "file" (content).
// POST /api/files/upload
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	groupName := r.FormValue("group")
	if groupName == "" {
		httputil.RespondError(w, http.StatusBadRequest, "group is required")
		return
	}

	// Resolve and authorize the destination before touching the content.
	target, err := h.fileService.ResolveUploadTarget(r.Context(), principal, groupName, r.FormValue("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer part.Close()

	file, err := h.fileService.FinalizeUpload(r.Context(), principal, target, header.Filename, part)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// Download streams a file's content with its stored name.
// GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	path, name, err := h.fileService.Download(r.Context(), principal, id)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// DownloadFolderZip streams a group subtree as a zip archive. The
// sub-path comes from the "path" query parameter.
// GET /api/groups/{id}/download?path=sub/dir
func (h *FileHandler) DownloadFolderZip(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	target, err := h.fileService.ResolveFolderZip(r.Context(), principal, groupID, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", target.Name))
	if err := h.fileService.StreamZip(w, target); err != nil {
		// Headers are already out; all we can do is log the truncation.
		h.logger.Error("zip stream aborted", "group_id", groupID, "error", err)
	}
}

// ListFiles returns all files, filtered by the "archived" query flag.
// GET /api/files?archived=true
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	archived := r.URL.Query().Get("archived") == "true"
	files, err := h.fileService.ListByArchived(r.Context(), archived)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// ArchiveFile archives a single file.
// POST /api/files/{id}/archive
func (h *FileHandler) ArchiveFile(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// RestoreFile restores a single file.
// POST /api/files/{id}/restore
func (h *FileHandler) RestoreFile(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *FileHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if !principal.IsAdmin() {
		handleError(w, fmt.Errorf("only admins can archive files: %w", domain.ErrForbidden))
		return
	}

	var file *models.File
	var err error
	if archived {
		file, err = h.fileService.ArchiveFile(r.Context(), id)
	} else {
		file, err = h.fileService.RestoreFile(r.Context(), id)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// SetPermissions replaces a file's per-user permission entries.
// PUT /api/files/{id}/permissions
func (h *FileHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Permissions []models.FilePermission `json:"permissions"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.fileService.SetPermissions(r.Context(), principal, id, req.Permissions)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// ListArchivedItems returns everything archived across all item kinds.
// Admin only.
// GET /api/archived
func (h *FileHandler) ListArchivedItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.IsAdmin() {
		handleError(w, fmt.Errorf("only admins can list archived items: %w", domain.ErrForbidden))
		return
	}

	items, err := h.fileService.ListArchivedItems(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}
