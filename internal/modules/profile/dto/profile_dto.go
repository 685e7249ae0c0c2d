package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileInput struct {
	Email *string `json:"email" binding:"omitempty,email,max=100"`
	Bio   *string `json:"bio" binding:"omitempty,max=500"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

type ItemCounts struct {
	Lost  int64 `json:"lost"`
	Found int64 `json:"found"`
}

// PublicProfileResponse is returned when viewing another user's public profile
type PublicProfileResponse struct {
	Username string     `json:"username"`
	Bio      string     `json:"bio"`
	Joined   time.Time  `json:"joined"`
	Items    ItemCounts `json:"items"`
}

// CurrentProfileResponse includes the contact fields only the owner sees.
type CurrentProfileResponse struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	Bio      string     `json:"bio"`
	Phone    string     `json:"phone"`
	Joined   time.Time  `json:"joined"`
	Items    ItemCounts `json:"items"`
}
