package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

var userColumns = []string{"id", "email", "password_hash", "role", "created_at"}

// UserRepo UserRepository over PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository builds the user adapter. Pass a pool or a tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persists a new profile.
func (r *UserRepo) Create(ctx context.Context, user *entity.UserProfile) error {
	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID single lookup keyed by identity id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// GetByEmail lookup by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"lower(email)": email})
}

func (r *UserRepo) findOne(ctx context.Context, where sq.Eq) (*entity.UserProfile, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	var u entity.UserProfile
	err = r.q.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
