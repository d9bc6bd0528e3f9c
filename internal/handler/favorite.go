package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/httputil"
	"docvault/internal/service"
)

// FavoriteHandler handles favorites requests.
type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	logger          *slog.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// Toggle adds or removes one item from the caller's favorites.
// POST /api/favorites/toggle
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		ItemType string `json:"item_type"`
		ItemID   string `json:"item_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemType, err := models.ParseItemType(req.ItemType)
	if err != nil {
		handleError(w, fmt.Errorf("%v: %w", err, domain.ErrValidation))
		return
	}

	favorites, err := h.favoriteService.Toggle(r.Context(), principal, itemType, req.ItemID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string][]models.Favorite{"favorites": favorites})
}

// List resolves the caller's favorites into files and folders.
// GET /api/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	resolved, err := h.favoriteService.List(r.Context(), principal)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resolved)
}
