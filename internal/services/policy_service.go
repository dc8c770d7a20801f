package services

import (
	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// The real enforcer already has the method set the service needs
var _ domain.CasbinEnforcer = (*casbin.Enforcer)(nil)

// PolicyServiceImpl implements domain.PolicyService using Casbin. Rules are
// (role, path pattern, method) triples.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
	logger   *zap.Logger
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer domain.CasbinEnforcer, logger *zap.Logger) *PolicyServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyServiceImpl{enforcer: enforcer, logger: logger}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	added, err := p.enforcer.AddPolicy(role, resource, action)
	if err != nil {
		return err
	}
	if added {
		p.logger.Info("policy added", zap.String("role", role), zap.String("resource", resource), zap.String("action", action))
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	removed, err := p.enforcer.RemovePolicy(role, resource, action)
	if err != nil {
		return err
	}
	if removed {
		p.logger.Info("policy removed", zap.String("role", role), zap.String("resource", resource), zap.String("action", action))
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService. An empty role is never
// allowed.
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	if role == "" {
		return false, nil
	}
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, err := p.enforcer.GetPolicy()
	if err != nil {
		p.logger.Warn("failed to read policies", zap.Error(err))
		return [][]string{}
	}
	return policies
}

var _ domain.PolicyService = (*PolicyServiceImpl)(nil)
