package rbac

import (
	"context"

	"go-derma/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RolePermission struct {
	ID       uint   `gorm:"primaryKey"`
	Role     string `gorm:"column:role;type:varchar(20);not null;uniqueIndex:uq_role_permission"`
	Resource string `gorm:"column:resource;type:varchar(64);not null;uniqueIndex:uq_role_permission"`
	Action   string `gorm:"column:action;type:varchar(64);not null;uniqueIndex:uq_role_permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions(ctx context.Context) ([]domain.PolicyRule, error)
	Seed(ctx context.Context, rules []domain.PolicyRule) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRolePermissions(ctx context.Context) ([]domain.PolicyRule, error) {
	var rows []RolePermission
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]domain.PolicyRule, len(rows))
	for i, row := range rows {
		rules[i] = domain.PolicyRule{Role: row.Role, Resource: row.Resource, Action: row.Action}
	}
	return rules, nil
}

func (r *repository) Seed(ctx context.Context, rules []domain.PolicyRule) error {
	if len(rules) == 0 {
		return nil
	}
	rows := make([]RolePermission, len(rules))
	for i, rule := range rules {
		rows[i] = RolePermission{Role: rule.Role, Resource: rule.Resource, Action: rule.Action}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
