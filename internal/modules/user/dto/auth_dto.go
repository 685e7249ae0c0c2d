package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50,excludes=@"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginInput takes either a username or an email in Login.
type LoginInput struct {
	Login    string `json:"login" binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}
