package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/analytics"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	repomock "github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository/mock"
)

type fakePDF struct {
	got         *dto.SummaryResponse
	requestedBy string
	err         error
}

func (f *fakePDF) GenerateSummaryPDF(_ context.Context, s *dto.SummaryResponse, requestedBy string) ([]byte, error) {
	f.got, f.requestedBy = s, requestedBy
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

var snapshot = []entity.ExpenseRecord{
	{ID: "1", Amount: 12.50, Category: "meals", OwnerID: "u1", CreatedAt: time.Now()},
	{ID: "2", Amount: 7.00, Category: "meals", OwnerID: "u1", CreatedAt: time.Now()},
	{ID: "3", Amount: 30.00, Category: "travel", OwnerID: "u2", CreatedAt: time.Now()},
}

func TestSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockExpenseRepository(ctrl)
	uc := analytics.NewSummaryUseCase(repo, nil)
	ctx := context.Background()
	scope := expense.ScopeFor(entity.RoleSupervisor, "boss")

	repo.EXPECT().ListByScope(ctx, scope).Return(snapshot, nil)

	got, err := uc.Summary(ctx, scope, expense.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, "49.5", got.Total.String())
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "all", got.Scope)
	assert.Equal(t, "all", got.Period)
	require.Len(t, got.ByCategory, 2)
	assert.Equal(t, "meals", got.ByCategory[0].Category)
	assert.Equal(t, "19.5", got.ByCategory[0].Amount.String())
	assert.Equal(t, "Travel", got.ByCategory[1].Label)
}

func TestSummary_EmptyScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockExpenseRepository(ctrl)
	uc := analytics.NewSummaryUseCase(repo, nil)

	_, err := uc.Summary(context.Background(), expense.ScopeFor(entity.RoleUnknown, "x"), expense.PeriodAll)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSummary_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockExpenseRepository(ctrl)
	uc := analytics.NewSummaryUseCase(repo, nil)
	scope := expense.ScopeFor(entity.RoleEmployee, "u1")

	repo.EXPECT().ListByScope(gomock.Any(), scope).Return(nil, errors.New("timeout"))

	_, err := uc.Summary(context.Background(), scope, expense.PeriodMonth)
	assert.Error(t, err)
}

func TestExportPDF(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockExpenseRepository(ctrl)
	pdf := &fakePDF{}
	uc := analytics.NewSummaryUseCase(repo, pdf)
	scope := expense.ScopeFor(entity.RoleSupervisor, "boss")

	repo.EXPECT().ListByScope(gomock.Any(), scope).Return(snapshot, nil)

	out, err := uc.ExportPDF(context.Background(), scope, expense.PeriodAll, entity.Identity{ID: "boss", Email: "boss@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)
	assert.Equal(t, "boss@example.com", pdf.requestedBy)
	assert.Equal(t, 3, pdf.got.Count)
}

func TestExportPDF_RenderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockExpenseRepository(ctrl)
	uc := analytics.NewSummaryUseCase(repo, &fakePDF{err: errors.New("font missing")})
	scope := expense.ScopeFor(entity.RoleSupervisor, "boss")

	repo.EXPECT().ListByScope(gomock.Any(), scope).Return(snapshot, nil)

	_, err := uc.ExportPDF(context.Background(), scope, expense.PeriodAll, entity.Identity{ID: "boss"})
	assert.Error(t, err)
}
