package app

import (
	"context"
	"errors"
	"strings"

	"go-derma/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminInput struct {
	Email    string
	Password string
	Name     string
}

var ErrAdminExists = errors.New("an account with this email already exists")

// CreateAdmin inserts an approved admin account. The HTTP surface only ever
// creates role=user accounts.
func CreateAdmin(ctx context.Context, users user.Repository, in AdminInput) (user.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 6 {
		return user.UserResponse{}, errors.New("email and a password of at least 6 characters are required")
	}

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.UserResponse{}, err
	}
	if exists {
		return user.UserResponse{}, ErrAdminExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrator"
	}

	u := &user.User{
		ID:         uuid.New(),
		Name:       name,
		Email:      email,
		Password:   string(hashed),
		Role:       user.RoleAdmin,
		IsApproved: true,
	}
	if err := users.Create(ctx, u); err != nil {
		if user.IsUniqueEmailViolation(err) {
			return user.UserResponse{}, ErrAdminExists
		}
		return user.UserResponse{}, err
	}

	zap.L().Named("app.admin").Info("admin account created", zap.String("user_id", u.ID.String()))
	return user.ToResponse(*u), nil
}
