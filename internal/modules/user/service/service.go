package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/lostfound/internal/auth"
	"anoa.com/lostfound/internal/entity"
	"anoa.com/lostfound/internal/modules/user/dto"
	"anoa.com/lostfound/internal/modules/user/repository"
	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	input.Username = strings.ReplaceAll(strings.TrimSpace(input.Username), " ", "_")
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         entity.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	input.Login = strings.TrimSpace(input.Login)
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	var (
		user *entity.User
		err  error
	)
	if validator.IsEmail(input.Login) {
		user, err = s.repo.FindByEmail(ctx, strings.ToLower(input.Login))
	} else {
		user, err = s.repo.FindByUsername(ctx, input.Login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, _, err := auth.GenerateToken(s.secret, user.ID, user.Username, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
