package usecase

import (
	"context"
	"fmt"

	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository"
)

// RoleResolver looks up the role of an identity. There is no cache: every request
// resolves again so out-of-band role changes apply immediately.
type RoleResolver struct {
	userRepo repository.UserRepository
}

// NewRoleResolver builds the resolver.
func NewRoleResolver(userRepo repository.UserRepository) *RoleResolver {
	return &RoleResolver{userRepo: userRepo}
}

// Resolve performs one point lookup of the profile keyed by identity id.
// A missing profile or an unrecognized role yields RoleUnknown without error;
// an error is returned only for store failures.
func (r *RoleResolver) Resolve(ctx context.Context, id entity.Identity) (entity.Role, error) {
	if id.ID == "" {
		return entity.RoleUnknown, nil
	}
	profile, err := r.userRepo.GetByID(ctx, id.ID)
	if err != nil {
		return entity.RoleUnknown, fmt.Errorf("resolve role: %w", err)
	}
	if profile == nil {
		return entity.RoleUnknown, nil
	}
	return entity.ParseRole(profile.Role), nil
}
