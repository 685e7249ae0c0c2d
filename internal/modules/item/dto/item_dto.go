package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Kind             string   `json:"kind" binding:"required,oneof=lost found"`
	Name             string   `json:"name" binding:"required,max=120"`
	Place            string   `json:"place" binding:"required,max=200"`
	IncidentTime     string   `json:"time" binding:"required,max=100"`
	Contact          string   `json:"contact" binding:"required,max=200"`
	Description      string   `json:"description" binding:"required,max=5000"`
	Reward           string   `json:"reward" binding:"max=100"`
	Latitude         *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude        *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	ImageURL         *string  `json:"image_url" binding:"omitempty,max=2048"`
	SecurityQuestion *string  `json:"security_question" binding:"omitempty,max=255"`
	SecurityAnswer   *string  `json:"security_answer" binding:"omitempty,max=72"`
}

// ItemFilter is the dashboard query. Type "all" or empty disables the kind filter.
type ItemFilter struct {
	Type   string `form:"type" binding:"omitempty,oneof=all lost found"`
	Sort   string `form:"sort" binding:"omitempty,oneof=newest oldest"`
	Search string `form:"search" binding:"max=200"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type SearchQuery struct {
	Query string `form:"q" binding:"required,max=200"`
	Type  string `form:"type" binding:"omitempty,oneof=all lost found"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type ReporterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type ItemResponse struct {
	ID               uuid.UUID        `json:"id"`
	Kind             string           `json:"kind"`
	Name             string           `json:"name"`
	Place            string           `json:"place"`
	IncidentTime     string           `json:"time"`
	Contact          string           `json:"contact"`
	Description      string           `json:"description"`
	Reward           string           `json:"reward,omitempty"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	ImageURL         *string          `json:"image_url,omitempty"`
	SecurityQuestion *string          `json:"security_question,omitempty"`
	HasChallenge     bool             `json:"has_challenge"`
	Resolved         bool             `json:"resolved"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty"`
	ClaimCount       int              `json:"claim_count"`
	Reporter         ReporterResponse `json:"reporter"`
	CreatedAt        time.Time        `json:"created_at"`
}
