package auth

import (
	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginInput carries the login form.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the token rotation request. AccessID and UserID come
// from the expiring access token's claims.
type RefreshInput struct {
	AccessID     string
	UserID       uuid.UUID
	RefreshToken string
}

// ProfileDTO is the authenticated user's own view.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
}

// TokenPair is the response to a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult pairs the profile with freshly minted tokens.
type AuthResult struct {
	User   ProfileDTO `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

func toProfile(u *models.User) ProfileDTO {
	return ProfileDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
	}
}
