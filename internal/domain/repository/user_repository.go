package repository

import (
	"context"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
)

//go:generate mockgen -source=user_repository.go -destination=mock/user_repository_mock.go -package=mock

// UserRepository persistence port for user profiles.
// Lookups return (nil, nil) when the profile does not exist.
type UserRepository interface {
	Create(ctx context.Context, user *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
}
