package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

func TestScopeWhere(t *testing.T) {
	t.Run("supervisor sees every owned row", func(t *testing.T) {
		where, err := scopeWhere(expense.ScopeFor(entity.RoleSupervisor, "boss"))
		require.NoError(t, err)
		sql, args, err := psql.Select("id").From("expenses").Where(where).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id FROM expenses WHERE owner_id IS NOT NULL", sql)
		assert.Empty(t, args)
	})

	t.Run("employee sees own rows", func(t *testing.T) {
		where, err := scopeWhere(expense.ScopeFor(entity.RoleEmployee, "u1"))
		require.NoError(t, err)
		sql, args, err := psql.Select("id").From("expenses").Where(where).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id FROM expenses WHERE (owner_id IS NOT NULL AND owner_id = $1)", sql)
		assert.Equal(t, []interface{}{"u1"}, args)
	})

	t.Run("empty scope never builds a query", func(t *testing.T) {
		_, err := scopeWhere(expense.ScopeFor(entity.RoleUnknown, "u1"))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDeleteStatementIsScoped(t *testing.T) {
	where, err := scopeWhere(expense.ScopeFor(entity.RoleEmployee, "u1"))
	require.NoError(t, err)

	sql, args, err := psql.Delete("expenses").Where(map[string]interface{}{"id": "rec-1"}).Where(where).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM expenses WHERE id = $1 AND (owner_id IS NOT NULL AND owner_id = $2)", sql)
	assert.Equal(t, []interface{}{"rec-1", "u1"}, args)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(assert.AnError))
}

func TestAmountRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		text string
	}{
		{"sub-cent digits", 1.005, "1.005"},
		{"cents", 12.75, "12.75"},
		{"zero", 0, "0"},
		{"beyond twelve integer digits", 1e13, "10000000000000"},
		{"float noise", 0.1 + 0.2, "0.30000000000000004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := amountParam(tt.in)
			assert.Equal(t, tt.text, d.String())
			assert.Equal(t, tt.in, amountValue(d))
		})
	}
}

func TestMigrationsKeepAmountUnrounded(t *testing.T) {
	for _, name := range []string{"migrations/001_init.sql", "migrations/002_amount_precision.sql"} {
		body, err := migrationFS.ReadFile(name)
		require.NoError(t, err, name)
		schema := strings.ToUpper(string(body))
		assert.Contains(t, schema, "AMOUNT", name)
		assert.NotContains(t, schema, "NUMERIC(14", name)
	}
}
