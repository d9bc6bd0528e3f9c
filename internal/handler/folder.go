package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/httputil"
	"docvault/internal/service"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService *service.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService *service.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with the existing folder if duplicate.
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req service.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), principal, &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Folder, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
				return h.folderService.GetFolder(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListDirectory lists the direct children (folders and files) of a
// logical path inside a group. The sub-path comes from the "path"
// query parameter; empty means the group root.
// GET /api/groups/{id}/contents?path=sub/dir
func (h *FolderHandler) ListDirectory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.folderService.ListDirectory(r.Context(), groupID, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}

// ArchiveFolder archives a single folder.
// POST /api/folders/{id}/archive
func (h *FolderHandler) ArchiveFolder(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// RestoreFolder restores a single folder.
// POST /api/folders/{id}/restore
func (h *FolderHandler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *FolderHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var folder *models.Folder
	var err error
	if archived {
		folder, err = h.folderService.ArchiveFolder(r.Context(), principal, id)
	} else {
		folder, err = h.folderService.RestoreFolder(r.Context(), principal, id)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// SetPermissions replaces a folder's group permission entries.
// PUT /api/folders/{id}/permissions
func (h *FolderHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Permissions []models.FolderPermission `json:"permissions"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.SetPermissions(r.Context(), principal, id, req.Permissions)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}
