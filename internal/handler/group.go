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

// GroupHandler handles group HTTP requests
type GroupHandler struct {
	groupService *service.GroupService
	logger       *slog.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
	}
}

type groupNameRequest struct {
	Name string `json:"name"`
}

// ListGroups returns all groups.
// GET /api/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.ListGroups(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	httputil.RespondJSON(w, http.StatusOK, groups)
}

// CreateGroup creates a group with its root folder and directory.
// POST /api/groups
// Returns 201 if created, 409 with the existing group if duplicate.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req groupNameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), principal, req.Name)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Group, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
				return h.groupService.GetGroup(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, group)
}

// RenameGroup renames a group and rewrites its descendant paths.
// PATCH /api/groups/{id}
func (h *GroupHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req groupNameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groupService.RenameGroup(r.Context(), principal, id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, group)
}

// ArchiveGroup archives a group, cascading to its folders and files.
// POST /api/groups/{id}/archive
func (h *GroupHandler) ArchiveGroup(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// RestoreGroup restores a group, cascading to its folders and files.
// POST /api/groups/{id}/restore
func (h *GroupHandler) RestoreGroup(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *GroupHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var err error
	if archived {
		err = h.groupService.ArchiveGroup(r.Context(), principal, id)
	} else {
		err = h.groupService.RestoreGroup(r.Context(), principal, id)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, group)
}
