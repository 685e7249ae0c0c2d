package service

import (
	"context"
	"errors"
	"fmt"

	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	search "anoa.com/lostfound/internal/modules/search/service"
	"anoa.com/lostfound/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResolutionService is the only code path that marks an item resolved.
type ResolutionService interface {
	// Resolve archives the item. Only its reporter may call it; repeating
	// the call is a successful no-op.
	Resolve(ctx context.Context, itemID, actorID uuid.UUID) error
}

type resolutionService struct {
	repo   itemRepo.Repository
	search search.SearchService
}

func NewResolutionService(repo itemRepo.Repository, searchSvc search.SearchService) ResolutionService {
	return &resolutionService{repo: repo, search: searchSvc}
}

func (s *resolutionService) Resolve(ctx context.Context, itemID, actorID uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	// reporter_id never changes, so checking it outside the update is safe
	if !item.IsReporter(actorID) {
		return fmt.Errorf("only the reporter may resolve this item: %w", apperror.ErrForbidden)
	}

	changed, err := s.repo.MarkResolved(ctx, item.ID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	zap.L().Info("item resolved", zap.String("item_id", item.ID.String()), zap.String("reporter_id", actorID.String()))

	if s.search != nil {
		if err := s.search.RemoveItem(item.ID); err != nil {
			zap.L().Warn("failed to remove resolved item from search index", zap.String("item_id", item.ID.String()), zap.Error(err))
		}
	}
	return nil
}
