package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-derma/internal/auth/errors"
	"go-derma/internal/punch"
	"go-derma/internal/shared/contextutil"
	"go-derma/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TokenIssuer interface {
	Issue(userID, email, role string) (string, time.Time, error)
}

// PunchCloser closes the caller's open punch on logout.
type PunchCloser interface {
	CloseActive(ctx context.Context, userID string) (*punch.PunchResponse, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error)
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Logout(ctx context.Context, userID string) (LogoutResponse, error)
	Me(ctx context.Context, userID string) (user.UserResponse, error)
}

type service struct {
	users   user.Repository
	tokens  TokenIssuer
	punches PunchCloser
	logger  *zap.Logger
}

func NewService(users user.Repository, tokens TokenIssuer, punches PunchCloser, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, tokens: tokens, punches: punches, logger: l}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("register lookup failed", zap.String("request_id", rid), zap.Error(err))
		return user.UserResponse{}, err
	}
	if exists {
		return user.UserResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, err
	}

	u := &user.User{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Password:   string(hashed),
		Role:       user.RoleUser,
		IsApproved: false,
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		CityState:  strings.TrimSpace(req.CityState),
		Pincode:    strings.TrimSpace(req.Pincode),
	}

	if err := s.users.Create(ctx, u); err != nil {
		// pre-check above can lose a race against a parallel registration
		if user.IsUniqueEmailViolation(err) {
			return user.UserResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("register persist failed", zap.String("request_id", rid), zap.Error(err))
		return user.UserResponse{}, err
	}

	s.logger.Info("user registered", zap.String("request_id", rid), zap.String("user_id", u.ID.String()))
	return user.ToResponse(*u), nil
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResponse{}, autherrors.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	// kredensial benar tapi belum di-approve admin
	if !u.IsApproved {
		return LoginResponse{}, autherrors.ErrAccountPending
	}

	token, expiresAt, err := s.tokens.Issue(u.ID.String(), u.Email, string(u.Role))
	if err != nil {
		s.logger.Error("issue token failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return LoginResponse{Token: token, ExpiresAt: expiresAt, User: user.ToResponse(*u)}, nil
}

func (s *service) Logout(ctx context.Context, userID string) (LogoutResponse, error) {
	resp := LogoutResponse{LoggedOut: true}
	if s.punches == nil {
		return resp, nil
	}

	closed, err := s.punches.CloseActive(ctx, userID)
	if err != nil {
		s.logger.Error("logout punch out failed", zap.String("user_id", userID), zap.Error(err))
		return LogoutResponse{}, err
	}
	resp.Punch = closed
	return resp, nil
}

func (s *service) Me(ctx context.Context, userID string) (user.UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return user.UserResponse{}, autherrors.ErrInvalidUserID
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.UserResponse{}, autherrors.ErrInvalidUserID
		}
		return user.UserResponse{}, err
	}
	return user.ToResponse(*u), nil
}
