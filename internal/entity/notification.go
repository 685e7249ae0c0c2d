package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeClaim  = "claim"
	NotificationTypeSystem = "system"
)

// Notification is addressed by the recipient's user id; RelatedItemID is a
// navigation hint only and carries no foreign key.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:1" json:"recipient_id"`
	Recipient     *User      `gorm:"constraint:OnDelete:CASCADE" json:"recipient,omitempty"`
	ActorID       *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Type          string     `gorm:"size:20;not null" json:"type"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	RelatedItemID *uuid.UUID `gorm:"type:uuid;index" json:"related_item_id,omitempty"`
	IsRead        bool       `gorm:"not null" json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index:idx_notifications_recipient,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	if n.Type == "" {
		n.Type = NotificationTypeSystem
	}
	return
}
