package service

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// ResolvedFavorites is a user's favorites expanded into the items they
// reference. Entries pointing at items that no longer resolve (or that
// were archived) are silently dropped from the listing, not from the
// stored set.
type ResolvedFavorites struct {
	Files   []models.File   `json:"files"`
	Folders []models.Folder `json:"folders"`
}

// FavoriteService manages a user's favorites set.
type FavoriteService struct {
	userRepo   repositories.UserRepository
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	userRepo repositories.UserRepository,
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{
		userRepo:   userRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// Toggle adds the item to the principal's favorites if absent, removes
// it if present, and returns the updated set. The item must exist when
// adding; toggling twice is a no-op overall.
func (s *FavoriteService) Toggle(ctx context.Context, principal *models.Principal, itemType models.ItemType, itemID string) ([]models.Favorite, error) {
	if itemID == "" {
		return nil, fmt.Errorf("item id required: %w", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	favorites := user.Favorites
	removed := false
	for i, fav := range favorites {
		if fav.ItemType == itemType && fav.ItemID == itemID {
			favorites = append(favorites[:i], favorites[i+1:]...)
			removed = true
			break
		}
	}

	if !removed {
		if err := s.itemExists(ctx, itemType, itemID); err != nil {
			return nil, err
		}
		favorites = append(favorites, models.Favorite{ItemType: itemType, ItemID: itemID})
	}

	if favorites == nil {
		favorites = []models.Favorite{}
	}
	if err := s.userRepo.SetFavorites(ctx, user.ID, favorites); err != nil {
		return nil, err
	}

	s.logger.Info("favorite toggled",
		"user_id", user.ID, "item_type", itemType, "item_id", itemID, "added", !removed)
	return favorites, nil
}

// List resolves the principal's favorites into the files and folders
// they reference.
func (s *FavoriteService) List(ctx context.Context, principal *models.Principal) (*ResolvedFavorites, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	var fileIDs, folderIDs []string
	for _, fav := range user.Favorites {
		switch fav.ItemType {
		case models.ItemFile:
			fileIDs = append(fileIDs, fav.ItemID)
		case models.ItemFolder:
			folderIDs = append(folderIDs, fav.ItemID)
		}
	}

	files, err := s.fileRepo.GetByIDs(ctx, fileIDs)
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.GetByIDs(ctx, folderIDs)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedFavorites{Files: files, Folders: folders}
	if resolved.Files == nil {
		resolved.Files = []models.File{}
	}
	if resolved.Folders == nil {
		resolved.Folders = []models.Folder{}
	}
	return resolved, nil
}

func (s *FavoriteService) itemExists(ctx context.Context, itemType models.ItemType, itemID string) error {
	switch itemType {
	case models.ItemFile:
		_, err := s.fileRepo.GetByID(ctx, itemID)
		return err
	case models.ItemFolder:
		_, err := s.folderRepo.GetByID(ctx, itemID)
		return err
	}
	return fmt.Errorf("invalid item type %q: %w", itemType, domain.ErrValidation)
}
