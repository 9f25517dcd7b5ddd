package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/validation"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

// ExpenseUseCase record mutators and scoped reads.
//
// Each mutation is a single store request with no retry. On success a change
// event is published so live views reload.
type ExpenseUseCase struct {
	repo     repository.ExpenseRepository
	changes  ports.ChangePublisher
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

// NewExpenseUseCase builds the use case.
func NewExpenseUseCase(repo repository.ExpenseRepository, changes ports.ChangePublisher, log zerolog.Logger) *ExpenseUseCase {
	return &ExpenseUseCase{
		repo:     repo,
		changes:  changes,
		validate: validation.New(),
		log:      log,
		now:      time.Now,
	}
}

// Create validates the add-form payload and stores a record owned by owner.
// Invalid input is rejected before any store call.
func (uc *ExpenseUseCase) Create(ctx context.Context, owner entity.Identity, in dto.CreateExpenseRequest) (*dto.CreateExpenseResponse, error) {
	if owner.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	if err := checkAmount(*in.Amount); err != nil {
		return nil, err
	}

	rec := &entity.ExpenseRecord{
		Description: in.Description,
		Amount:      *in.Amount,
		Category:    in.Category,
		OwnerID:     owner.ID,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	uc.publish(ctx, ports.ChangeCreated, rec.ID)
	return &dto.CreateExpenseResponse{ID: rec.ID}, nil
}

// Update overwrites description, amount and category of id. No version check:
// the last writer wins. Rows outside scope are left untouched.
func (uc *ExpenseUseCase) Update(ctx context.Context, scope expense.QuerySpec, id string, in dto.UpdateExpenseRequest) error {
	if scope.Empty() {
		return domain.ErrForbidden
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validation.Struct(uc.validate, in); err != nil {
		return err
	}
	if err := checkAmount(*in.Amount); err != nil {
		return err
	}

	d := expense.Draft{Description: in.Description, Amount: *in.Amount, Category: in.Category}
	if err := uc.repo.UpdateFields(ctx, id, scope, d); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	uc.publish(ctx, ports.ChangeUpdated, id)
	return nil
}

// Delete removes id unconditionally; a missing id is not reported.
func (uc *ExpenseUseCase) Delete(ctx context.Context, scope expense.QuerySpec, id string) error {
	if scope.Empty() {
		return domain.ErrForbidden
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if err := uc.repo.Delete(ctx, id, scope); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	uc.publish(ctx, ports.ChangeDeleted, id)
	return nil
}

// GetByID returns ErrNotFound when id is not in scope.
func (uc *ExpenseUseCase) GetByID(ctx context.Context, scope expense.QuerySpec, id string) (*dto.ExpenseResponse, error) {
	if scope.Empty() {
		return nil, domain.ErrForbidden
	}
	rec, err := uc.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.NewExpenseResponse(*rec)
	return &out, nil
}

// List returns every record in scope. Empty scopes never reach the store.
func (uc *ExpenseUseCase) List(ctx context.Context, scope expense.QuerySpec) ([]entity.ExpenseRecord, error) {
	if scope.Empty() {
		return nil, domain.ErrForbidden
	}
	return uc.repo.ListByScope(ctx, scope)
}

func (uc *ExpenseUseCase) publish(ctx context.Context, op ports.ChangeOp, id string) {
	ev := ports.ChangeEvent{ID: uuid.NewString(), Op: op, RecordID: id, At: uc.now().UTC()}
	if err := uc.changes.Publish(ctx, ev); err != nil {
		// the write already succeeded; live views catch up on the next change
		uc.log.Warn().Err(err).Str("op", string(op)).Str("record_id", id).Msg("publish change event")
	}
}

func checkAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return fmt.Errorf("%w: Amount must be a finite number", domain.ErrInvalidInput)
	}
	if a < 0 {
		return fmt.Errorf("%w: Amount must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
