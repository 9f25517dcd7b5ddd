// Package rbac holds the role -> permission table checked by the HTTP layer.
package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

// Resources and actions named in the policy.
const (
	ResourceExpenses = "expenses"
	ResourceSummary  = "summary"
	ResourceReceipts = "receipts"
	ResourceReports  = "reports"

	ActionRead   = "read"
	ActionWrite  = "write"
	ActionScan   = "scan"
	ActionExport = "export"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Which rows a role sees is decided by the expense scope, not here; this
// table only gates whole features.
var defaultPolicies = [][]string{
	{string(entity.RoleEmployee), ResourceExpenses, ActionRead},
	{string(entity.RoleEmployee), ResourceExpenses, ActionWrite},
	{string(entity.RoleEmployee), ResourceSummary, ActionRead},
	{string(entity.RoleEmployee), ResourceReceipts, ActionScan},
	{string(entity.RoleSupervisor), ResourceReports, ActionExport},
}

// supervisors inherit every employee permission
var defaultGroupings = [][]string{
	{string(entity.RoleSupervisor), string(entity.RoleEmployee)},
}

// Enforcer answers role/resource/action questions.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer builds an enforcer loaded with the built-in policy table.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac: load model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac: create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("rbac: add policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("rbac: add role inheritance: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform act on obj. Unknown roles get nothing.
func (en *Enforcer) Allowed(role entity.Role, obj, act string) (bool, error) {
	if role == entity.RoleUnknown {
		return false, nil
	}
	ok, err := en.e.Enforce(string(role), obj, act)
	if err != nil {
		return false, fmt.Errorf("rbac: enforce: %w", err)
	}
	return ok, nil
}
