package rbac

import (
	"context"
	"sync"

	"go-derma/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
	Policies() []domain.PolicyRule
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	rules    []domain.PolicyRule
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{repo: repo, enforcer: enforcer, logger: l}
}

// LoadPolicy replaces the in-memory policy with the stored one, seeding the
// defaults on first run.
func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		if err := s.repo.Seed(ctx, DefaultPolicies); err != nil {
			return err
		}
		rules = DefaultPolicies
		s.logger.Info("rbac default policy seeded", zap.Int("rules", len(rules)))
	}

	s.enforcer.ClearPolicy()
	for _, rule := range rules {
		if _, err := s.enforcer.AddPolicy(rule.Role, rule.Resource, rule.Action); err != nil {
			return err
		}
	}
	s.rules = append([]domain.PolicyRule(nil), rules...)

	s.logger.Info("rbac policy loaded", zap.Int("rules", len(rules)))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Policies() []domain.PolicyRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PolicyRule(nil), s.rules...)
}
