package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotifyInput struct {
	RecipientID   uuid.UUID
	ActorID       *uuid.UUID
	Type          string
	Message       string
	RelatedItemID *uuid.UUID
}

type NotificationResponse struct {
	ID                uuid.UUID  `json:"id"`
	RecipientUsername string     `json:"recipient_username"`
	Type              string     `json:"type"`
	Message           string     `json:"message"`
	RelatedItemID     *uuid.UUID `json:"related_item_id,omitempty"`
	IsRead            bool       `json:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
