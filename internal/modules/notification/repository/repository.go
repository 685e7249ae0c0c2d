package repository

import (
	"context"
	"time"

	"anoa.com/lostfound/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(notification).Error
}

func (r *notificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Preload("Recipient", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkAsRead affects zero rows for unknown ids or someone else's notification;
// both are treated as success.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now()}).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now()}).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
