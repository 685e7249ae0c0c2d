package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/lostfound/internal/entity"
	notifDto "anoa.com/lostfound/internal/modules/notification/dto"
	notifRepo "anoa.com/lostfound/internal/modules/notification/repository"
	"anoa.com/lostfound/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type NotificationService interface {
	Notify(ctx context.Context, input notifDto.NotifyInput) (*entity.Notification, error)
	ListForUser(ctx context.Context, recipientID uuid.UUID) ([]notifDto.NotificationResponse, error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewNotificationService builds the service. A nil redisClient disables the
// unread-count cache.
func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, cacheTTL time.Duration) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func unreadKey(recipientID uuid.UUID) string {
	return fmt.Sprintf("notification:unread:%s", recipientID)
}

func (s *notificationService) Notify(ctx context.Context, input notifDto.NotifyInput) (*entity.Notification, error) {
	if input.RecipientID == uuid.Nil {
		return nil, apperror.NewValidation("recipient", "is required")
	}
	if input.Message == "" {
		return nil, apperror.NewValidation("message", "is required")
	}

	notification := &entity.Notification{
		RecipientID:   input.RecipientID,
		ActorID:       input.ActorID,
		Type:          input.Type,
		Message:       input.Message,
		RelatedItemID: input.RelatedItemID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.RecipientID)
	return notification, nil
}

func (s *notificationService) ListForUser(ctx context.Context, recipientID uuid.UUID) ([]notifDto.NotificationResponse, error) {
	notifications, err := s.repo.FindByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	out := make([]notifDto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		res := notifDto.NotificationResponse{
			ID:            n.ID,
			Type:          n.Type,
			Message:       n.Message,
			RelatedItemID: n.RelatedItemID,
			IsRead:        n.IsRead,
			ReadAt:        n.ReadAt,
			CreatedAt:     n.CreatedAt,
		}
		if n.Recipient != nil {
			res.RecipientUsername = n.Recipient.Username
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, recipientID); err != nil {
		return err
	}
	s.invalidate(ctx, recipientID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, recipientID); err != nil {
		return err
	}
	s.invalidate(ctx, recipientID)
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	key := unreadKey(recipientID)

	if s.redisClient != nil {
		count, err := s.redisClient.Get(ctx, key).Int64()
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("unread cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, key, count, s.cacheTTL).Err(); err != nil {
			zap.L().Warn("unread cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return count, nil
}

// invalidate drops the cached unread count. Failure only delays freshness
// until the TTL runs out.
func (s *notificationService) invalidate(ctx context.Context, recipientID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, unreadKey(recipientID)).Err(); err != nil {
		zap.L().Warn("unread cache invalidation failed", zap.String("recipient_id", recipientID.String()), zap.Error(err))
	}
}
