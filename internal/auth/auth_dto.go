package auth

import (
	"time"

	"go-derma/internal/punch"
	"go-derma/internal/user"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	CityState string `json:"cityState" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      user.UserResponse `json:"user"`
}

type LogoutResponse struct {
	LoggedOut bool                 `json:"loggedOut"`
	Punch     *punch.PunchResponse `json:"punch"`
}
