package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitClaimRequest struct {
	Response string `json:"response"`
	Message  string `json:"message" binding:"required,max=2000"`
}

type ClaimantResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type ClaimResponse struct {
	ID        uuid.UUID         `json:"id"`
	ItemID    uuid.UUID         `json:"item_id"`
	Seq       int               `json:"seq"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Claimant  *ClaimantResponse `json:"claimant,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
