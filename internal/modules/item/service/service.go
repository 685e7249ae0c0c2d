package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/lostfound/internal/entity"
	itemDto "anoa.com/lostfound/internal/modules/item/dto"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	search "anoa.com/lostfound/internal/modules/search/service"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultPageSize   = 50
	defaultSearchSize = 20
)

// Service covers item creation and the read side: single lookups plus the
// active, archived and per-reporter listings.
type Service interface {
	CreateItem(ctx context.Context, reporterID uuid.UUID, req itemDto.CreateItemRequest) (*itemDto.ItemResponse, error)
	GetItem(ctx context.Context, id uuid.UUID) (*itemDto.ItemResponse, error)
	ListActive(ctx context.Context, filter itemDto.ItemFilter) ([]itemDto.ItemResponse, error)
	SearchActive(ctx context.Context, query itemDto.SearchQuery) ([]itemDto.ItemResponse, error)
	ListArchived(ctx context.Context, reporterUsername string) ([]itemDto.ItemResponse, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]itemDto.ItemResponse, error)
}

type service struct {
	repo       itemRepo.Repository
	userRepo   userRepo.UserRepository
	search     search.SearchService
	bcryptCost int
}

// NewService wires the item service. searchSvc may be nil when Meilisearch is
// not configured.
func NewService(repo itemRepo.Repository, userRepo userRepo.UserRepository, searchSvc search.SearchService, bcryptCost int) Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &service{
		repo:       repo,
		userRepo:   userRepo,
		search:     searchSvc,
		bcryptCost: bcryptCost,
	}
}

func (s *service) CreateItem(ctx context.Context, reporterID uuid.UUID, req itemDto.CreateItemRequest) (*itemDto.ItemResponse, error) {
	normalizeCreate(&req)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	reporter, err := s.userRepo.FindByID(ctx, reporterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reporter not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	item := &entity.Item{
		Kind:             req.Kind,
		ReporterID:       reporter.ID,
		Name:             req.Name,
		Place:            req.Place,
		IncidentTime:     req.IncidentTime,
		Contact:          req.Contact,
		Description:      req.Description,
		Reward:           req.Reward,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		ImageURL:         req.ImageURL,
		SecurityQuestion: req.SecurityQuestion,
	}

	if req.SecurityAnswer != nil {
		if req.SecurityQuestion == nil {
			return nil, apperror.NewValidation("security_question", "is required when a security answer is set")
		}
		// bcrypt only reads the first 72 bytes
		if len(*req.SecurityAnswer) > 72 {
			return nil, apperror.NewValidation("security_answer", "must be at most 72 bytes")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.SecurityAnswer), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash security answer: %w", err)
		}
		hashed := string(hash)
		item.ChallengeSecretHash = &hashed
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	item.Reporter = reporter

	if s.search != nil {
		if err := s.search.IndexItem(item); err != nil {
			zap.L().Warn("failed to index item", zap.String("item_id", item.ID.String()), zap.Error(err))
		}
	}

	res := MapToResponse(item)
	return &res, nil
}

// normalizeCreate trims every text field and otherwise stores it as given.
// Markup is stripped only where text is rendered or indexed. Blank optional
// fields become nil so they are not stored.
func normalizeCreate(req *itemDto.CreateItemRequest) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	req.Name = strings.TrimSpace(req.Name)
	req.Place = strings.TrimSpace(req.Place)
	req.IncidentTime = strings.TrimSpace(req.IncidentTime)
	req.Contact = strings.TrimSpace(req.Contact)
	req.Description = strings.TrimSpace(req.Description)
	req.Reward = strings.TrimSpace(req.Reward)
	req.ImageURL = trimOptional(req.ImageURL)
	req.SecurityQuestion = trimOptional(req.SecurityQuestion)
	req.SecurityAnswer = trimOptional(req.SecurityAnswer)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*itemDto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	res := MapToResponse(item)
	return &res, nil
}

func (s *service) ListActive(ctx context.Context, filter itemDto.ItemFilter) ([]itemDto.ItemResponse, error) {
	if err := validator.Struct(filter); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}

	items, err := s.repo.FindActive(ctx, itemRepo.ActiveFilter{
		Kind:   kindOrEmpty(filter.Type),
		Search: strings.TrimSpace(filter.Search),
		Oldest: filter.Sort == "oldest",
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return mapAll(items), nil
}

func (s *service) SearchActive(ctx context.Context, query itemDto.SearchQuery) ([]itemDto.ItemResponse, error) {
	query.Query = strings.TrimSpace(query.Query)
	if err := validator.Struct(query); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultSearchSize
	}

	if s.search == nil {
		return s.ListActive(ctx, itemDto.ItemFilter{Type: query.Type, Search: query.Query, Limit: limit})
	}

	ids, err := s.search.SearchItemIDs(query.Query, kindOrEmpty(query.Type), limit)
	if err != nil {
		zap.L().Warn("search backend failed, falling back to database", zap.Error(err))
		return s.ListActive(ctx, itemDto.ItemFilter{Type: query.Type, Search: query.Query, Limit: limit})
	}

	items, err := s.repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mapAll(items), nil
}

func (s *service) ListArchived(ctx context.Context, reporterUsername string) ([]itemDto.ItemResponse, error) {
	reporter, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(reporterUsername))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	items, err := s.repo.FindArchivedByReporter(ctx, reporter.ID)
	if err != nil {
		return nil, err
	}
	return mapAll(items), nil
}

func (s *service) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]itemDto.ItemResponse, error) {
	items, err := s.repo.FindByReporter(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	return mapAll(items), nil
}

func kindOrEmpty(t string) string {
	if t == entity.ItemKindLost || t == entity.ItemKindFound {
		return t
	}
	return ""
}
