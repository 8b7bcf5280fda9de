package report

import (
	"context"
	"errors"
	"fmt"

	"go-derma/internal/invoice"
	reporterrors "go-derma/internal/report/errors"
	"go-derma/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	Customers(ctx context.Context) ([]CustomerInvoices, error)
	UserDetails(ctx context.Context, userID string) (UserDetails, error)
	ExportCSV(ctx context.Context, userID string) (string, []byte, error)
}

type service struct {
	users    user.Repository
	invoices invoice.Repository
	logger   *zap.Logger
}

func NewService(users user.Repository, invoices invoice.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{users: users, invoices: invoices, logger: l}
}

// invoicesByOwner loads every invoice of owners in one query, grouped by
// owner id and oldest first.
func (s *service) invoicesByOwner(ctx context.Context, owners []user.User) (map[string][]invoice.Invoice, error) {
	ids := make([]string, len(owners))
	for i, u := range owners {
		ids[i] = u.ID.String()
	}
	rows, err := s.invoices.FindByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]invoice.Invoice, len(owners))
	for _, inv := range rows {
		key := inv.CreatedBy.String()
		grouped[key] = append(grouped[key], inv)
	}
	return grouped, nil
}

func (s *service) Customers(ctx context.Context) ([]CustomerInvoices, error) {
	owners, err := s.users.FindByRole(ctx, user.RoleUser)
	if err != nil {
		s.logger.Error("list customers failed", zap.Error(err))
		return nil, err
	}

	grouped, err := s.invoicesByOwner(ctx, owners)
	if err != nil {
		s.logger.Error("load customer invoices failed", zap.Error(err))
		return nil, err
	}

	resp := make([]CustomerInvoices, len(owners))
	for i, u := range owners {
		resp[i] = CustomerInvoices{
			User:     user.ToResponse(u),
			Invoices: invoice.ToListResponse(grouped[u.ID.String()]),
		}
	}
	return resp, nil
}

func (s *service) findUser(ctx context.Context, userID string) (*user.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, reporterrors.ErrUserNotFound
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reporterrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) UserDetails(ctx context.Context, userID string) (UserDetails, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}

	invoices, err := s.invoices.FindByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("load user invoices failed", zap.String("user_id", userID), zap.Error(err))
		return UserDetails{}, err
	}

	return UserDetails{
		User:     user.ToResponse(*u),
		Invoices: invoice.ToListResponse(invoices),
		Stats:    ComputeStats(invoices),
	}, nil
}

// ExportCSV renders every customer's invoices, or only userID's when set.
func (s *service) ExportCSV(ctx context.Context, userID string) (string, []byte, error) {
	var owners []user.User
	filename := "invoices.csv"

	if userID == "" {
		all, err := s.users.FindByRole(ctx, user.RoleUser)
		if err != nil {
			return "", nil, err
		}
		owners = all
	} else {
		u, err := s.findUser(ctx, userID)
		if err != nil {
			return "", nil, err
		}
		owners = []user.User{*u}
		filename = fmt.Sprintf("user-%s-invoices.csv", u.ID.String())
	}

	grouped, err := s.invoicesByOwner(ctx, owners)
	if err != nil {
		return "", nil, err
	}

	body, err := writeInvoiceCSV(owners, grouped)
	if err != nil {
		s.logger.Error("render invoice csv failed", zap.Error(err))
		return "", nil, err
	}

	s.logger.Info("invoice csv exported", zap.Int("users", len(owners)), zap.Int("bytes", len(body)))
	return filename, body, nil
}
