// Package expense holds the pure expense rules: which records a role may see,
// how a snapshot is totalled and how an edit draft is applied.
package expense

import "github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"

// ScopeKind kind of restriction applied to expense queries.
type ScopeKind int

const (
	// ScopeEmpty nothing may be queried; render access denied.
	ScopeEmpty ScopeKind = iota
	// ScopeAll every owned record.
	ScopeAll
	// ScopeOwner only records whose owner is OwnerID.
	ScopeOwner
)

// QuerySpec query restriction produced by ScopeFor.
type QuerySpec struct {
	Kind    ScopeKind
	OwnerID string
}

// ScopeFor maps a role and identity to the records that identity may see.
// supervisor -> all, employee -> own records, anything else -> empty.
func ScopeFor(role entity.Role, identityID string) QuerySpec {
	switch role {
	case entity.RoleSupervisor:
		return QuerySpec{Kind: ScopeAll}
	case entity.RoleEmployee:
		if identityID == "" {
			return QuerySpec{Kind: ScopeEmpty}
		}
		return QuerySpec{Kind: ScopeOwner, OwnerID: identityID}
	default:
		return QuerySpec{Kind: ScopeEmpty}
	}
}

// Empty reports whether the spec must not reach the store.
func (q QuerySpec) Empty() bool {
	return q.Kind != ScopeAll && q.Kind != ScopeOwner
}

// Key stable identifier of the scope, used to group reloads.
func (q QuerySpec) Key() string {
	switch q.Kind {
	case ScopeAll:
		return "all"
	case ScopeOwner:
		return "owner:" + q.OwnerID
	default:
		return "none"
	}
}

// Allows reports whether r falls inside the scope.
// Records without an owner never match any scope.
func (q QuerySpec) Allows(r entity.ExpenseRecord) bool {
	if r.OwnerID == "" {
		return false
	}
	switch q.Kind {
	case ScopeAll:
		return true
	case ScopeOwner:
		return r.OwnerID == q.OwnerID
	default:
		return false
	}
}
