package service

import (
	"context"
	"math"

	"anoa.com/lostfound/internal/modules/admin/dto"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
)

type AdminService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

type adminService struct {
	userRepo userRepo.UserRepository
	itemRepo itemRepo.Repository
}

func NewAdminService(userRepo userRepo.UserRepository, itemRepo itemRepo.Repository) AdminService {
	return &adminService{
		userRepo: userRepo,
		itemRepo: itemRepo,
	}
}

func (s *adminService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.itemRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.StatsResponse{
		Users:       users,
		Items:       stats.Total,
		Lost:        stats.Lost,
		Found:       stats.Found,
		Resolved:    stats.Resolved,
		ActiveItems: stats.Total - stats.Resolved,
	}
	if stats.Total > 0 {
		res.ResolvedRatio = math.Round(float64(stats.Resolved)/float64(stats.Total)*1000) / 1000
	}
	return res, nil
}
