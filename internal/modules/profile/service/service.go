package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/lostfound/internal/entity"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	profileDto "anoa.com/lostfound/internal/modules/profile/dto"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/sanitize"
	"anoa.com/lostfound/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.CurrentProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.CurrentProfileResponse, error)
}

type profileService struct {
	repo     userRepo.UserRepository
	itemRepo itemRepo.Repository
}

func NewProfileService(repo userRepo.UserRepository, itemRepo itemRepo.Repository) ProfileService {
	return &profileService{
		repo:     repo,
		itemRepo: itemRepo,
	}
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	counts, err := s.itemCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.PublicProfileResponse{
		Username: user.Username,
		Bio:      user.Bio,
		Joined:   user.CreatedAt,
		Items:    counts,
	}, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.CurrentProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.currentProfile(ctx, user)
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.CurrentProfileResponse, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != "" && email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Bio != nil {
		user.Bio = sanitize.Text(*input.Bio)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.currentProfile(ctx, user)
}

func (s *profileService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) currentProfile(ctx context.Context, user *entity.User) (*profileDto.CurrentProfileResponse, error) {
	counts, err := s.itemCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.CurrentProfileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Bio:      user.Bio,
		Phone:    user.Phone,
		Joined:   user.CreatedAt,
		Items:    counts,
	}, nil
}

func (s *profileService) itemCounts(ctx context.Context, userID uuid.UUID) (profileDto.ItemCounts, error) {
	lost, found, err := s.itemRepo.CountByReporter(ctx, userID)
	if err != nil {
		return profileDto.ItemCounts{}, err
	}
	return profileDto.ItemCounts{Lost: lost, Found: found}, nil
}
