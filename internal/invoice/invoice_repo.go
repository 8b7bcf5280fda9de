package invoice

import (
	"context"

	"go-derma/internal/shared/scope"

	"gorm.io/gorm"
)

//go:generate mockgen -source=invoice_repo.go -destination=mock/invoice_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Invoice, error)
	FindByOwnerAndSet(ctx context.Context, ownerID, setNumber string) ([]Invoice, error)
	FindByOwners(ctx context.Context, ownerIDs []string) ([]Invoice, error)
	FindAllOrdered(ctx context.Context) ([]Invoice, error)
	UpdateStatus(ctx context.Context, id string, status Status) (int64, error)
	UpdateStatusBySet(ctx context.Context, setNumber string, status Status) (int64, error)
	Update(ctx context.Context, inv *Invoice) error
	ReplaceItems(ctx context.Context, invoiceID string, items []Item) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// bySet matches the sentinel NoSet against invoices without a set number.
func bySet(setNumber string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if setNumber == NoSet {
			return db.Where("(set_number = '' OR set_number IS NULL)")
		}
		return db.Where("set_number = ?", setNumber)
	}
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Invoice, error) {
	var inv Invoice
	err := r.db.WithContext(ctx).Scopes(withItems).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *repository) FindByOwner(ctx context.Context, ownerID string) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.WithContext(ctx).
		Scopes(withItems, scope.Owner(ownerID)).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *repository) FindByOwnerAndSet(ctx context.Context, ownerID, setNumber string) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.WithContext(ctx).
		Scopes(withItems, scope.Owner(ownerID), bySet(setNumber)).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *repository) FindByOwners(ctx context.Context, ownerIDs []string) ([]Invoice, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var invoices []Invoice
	err := r.db.WithContext(ctx).
		Scopes(withItems, scope.Owners(ownerIDs)).
		Order("created_at ASC").
		Find(&invoices).Error
	return invoices, err
}

// FindAllOrdered returns every invoice oldest first, without items.
func (r *repository) FindAllOrdered(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&invoices).Error
	return invoices, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Invoice{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// UpdateStatusBySet moves the whole set in one statement.
func (r *repository) UpdateStatusBySet(ctx context.Context, setNumber string, status Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Invoice{}).
		Scopes(bySet(setNumber)).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *repository) Update(ctx context.Context, inv *Invoice) error {
	return r.db.WithContext(ctx).
		Model(inv).
		Select("invoice_number", "customer_name", "set_number", "status", "created_at", "updated_at").
		Updates(inv).Error
}

func (r *repository) ReplaceItems(ctx context.Context, invoiceID string, items []Item) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&Item{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}
