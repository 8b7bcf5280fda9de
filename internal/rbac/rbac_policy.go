package rbac

import "go-derma/internal/domain"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultPolicies is seeded into role_permissions when the table is empty.
var DefaultPolicies = []domain.PolicyRule{
	{Role: RoleUser, Resource: "invoice", Action: "create"},
	{Role: RoleUser, Resource: "invoice", Action: "read_own"},
	{Role: RoleUser, Resource: "punch", Action: "write"},
	{Role: RoleUser, Resource: "punch", Action: "read_own"},

	{Role: RoleAdmin, Resource: "invoice", Action: "read_all"},
	{Role: RoleAdmin, Resource: "invoice", Action: "update"},
	{Role: RoleAdmin, Resource: "invoice_set", Action: "review"},
	{Role: RoleAdmin, Resource: "registration", Action: "read"},
	{Role: RoleAdmin, Resource: "registration", Action: "review"},
	{Role: RoleAdmin, Resource: "punch", Action: "read_all"},
	{Role: RoleAdmin, Resource: "punch", Action: "approve"},
	{Role: RoleAdmin, Resource: "report", Action: "read"},
	{Role: RoleAdmin, Resource: "rbac", Action: "read"},
}
