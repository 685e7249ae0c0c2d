package repository

import (
	"context"
	"strings"
	"time"

	"anoa.com/lostfound/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActiveFilter selects unresolved items. Empty Kind and Search match all.
type ActiveFilter struct {
	Kind   string
	Search string
	Oldest bool
	Limit  int
	Offset int
}

type Stats struct {
	Total    int64 `json:"total"`
	Lost     int64 `json:"lost"`
	Found    int64 `json:"found"`
	Resolved int64 `json:"resolved"`
}

// ClaimGuard runs while the item row is locked, before the claim is written.
type ClaimGuard func(item *entity.Item) error

type Repository interface {
	Create(ctx context.Context, item *entity.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	FindActive(ctx context.Context, filter ActiveFilter) ([]entity.Item, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error)
	FindArchivedByReporter(ctx context.Context, reporterID uuid.UUID) ([]entity.Item, error)
	FindByReporter(ctx context.Context, reporterID uuid.UUID) ([]entity.Item, error)
	AppendClaim(ctx context.Context, itemID uuid.UUID, claim *entity.Claim, guard ClaimGuard) error
	FindClaims(ctx context.Context, itemID uuid.UUID) ([]entity.Claim, error)
	MarkResolved(ctx context.Context, id uuid.UUID) (bool, error)
	CountByReporter(ctx context.Context, reporterID uuid.UUID) (lost int64, found int64, err error)
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func preloadReporter(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username")
}

func (r *repository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	if err := r.db.WithContext(ctx).
		Preload("Reporter", preloadReporter).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindActive(ctx context.Context, filter ActiveFilter) ([]entity.Item, error) {
	query := r.db.WithContext(ctx).
		Preload("Reporter", preloadReporter).
		Where("resolved = ?", false)

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	// uuid v7 ids follow insertion order, so they break created_at ties.
	if filter.Oldest {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var items []entity.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}

	var items []entity.Item
	if err := r.db.WithContext(ctx).
		Preload("Reporter", preloadReporter).
		Where("id IN ? AND resolved = ?", ids, false).
		Find(&items).Error; err != nil {
		return nil, err
	}

	// Reorder to match the caller's ranking
	byID := make(map[uuid.UUID]entity.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]entity.Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered, nil
}

func (r *repository) FindArchivedByReporter(ctx context.Context, reporterID uuid.UUID) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Preload("Reporter", preloadReporter).
		Where("reporter_id = ? AND resolved = ?", reporterID, true).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindByReporter(ctx context.Context, reporterID uuid.UUID) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Preload("Reporter", preloadReporter).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	return items, err
}

// AppendClaim locks the item row, lets guard veto the append, then writes the
// claim at the next sequence position. Concurrent appends to the same item
// queue on the row lock; none overwrites another.
func (r *repository) AppendClaim(ctx context.Context, itemID uuid.UUID, claim *entity.Claim, guard ClaimGuard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", itemID).
			First(&item).Error; err != nil {
			return err
		}

		if guard != nil {
			if err := guard(&item); err != nil {
				return err
			}
		}

		claim.ItemID = item.ID
		claim.Seq = item.ClaimCount + 1
		if err := tx.Omit(clause.Associations).Create(claim).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Item{}).
			Where("id = ?", item.ID).
			Update("claim_count", claim.Seq).Error
	})
}

func (r *repository) FindClaims(ctx context.Context, itemID uuid.UUID) ([]entity.Claim, error) {
	var claims []entity.Claim
	err := r.db.WithContext(ctx).
		Preload("Claimant", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email")
		}).
		Where("item_id = ?", itemID).
		Order("seq ASC").
		Find(&claims).Error
	return claims, err
}

// MarkResolved flips resolved with one conditional update. It reports false
// when the item was already resolved.
func (r *repository) MarkResolved(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Item{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CountByReporter(ctx context.Context, reporterID uuid.UUID) (int64, int64, error) {
	var rows []struct {
		Kind  string
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&entity.Item{}).
		Select("kind, COUNT(*) AS count").
		Where("reporter_id = ?", reporterID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return 0, 0, err
	}

	var lost, found int64
	for _, row := range rows {
		switch row.Kind {
		case entity.ItemKindLost:
			lost = row.Count
		case entity.ItemKindFound:
			found = row.Count
		}
	}
	return lost, found, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).Model(&entity.Item{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE kind = ?) AS lost,
			COUNT(*) FILTER (WHERE kind = ?) AS found,
			COUNT(*) FILTER (WHERE resolved) AS resolved`, entity.ItemKindLost, entity.ItemKindFound).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
