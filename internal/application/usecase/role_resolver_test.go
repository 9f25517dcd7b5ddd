package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	repomock "github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository/mock"
)

func TestRoleResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	id := entity.Identity{ID: "u1", Email: "u1@example.com"}

	tests := []struct {
		name    string
		profile *entity.UserProfile
		err     error
		want    entity.Role
		wantErr bool
	}{
		{"employee", &entity.UserProfile{ID: "u1", Role: "employee"}, nil, entity.RoleEmployee, false},
		{"supervisor", &entity.UserProfile{ID: "u1", Role: "supervisor"}, nil, entity.RoleSupervisor, false},
		{"missing profile", nil, nil, entity.RoleUnknown, false},
		{"unrecognized role", &entity.UserProfile{ID: "u1", Role: "admin"}, nil, entity.RoleUnknown, false},
		{"store failure", nil, errors.New("timeout"), entity.RoleUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := repomock.NewMockUserRepository(ctrl)
			repo.EXPECT().GetByID(ctx, "u1").Return(tt.profile, tt.err).Times(1)

			got, err := usecase.NewRoleResolver(repo).Resolve(ctx, id)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoleResolver_ResolvesEveryTime(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().GetByID(ctx, "u1").Return(&entity.UserProfile{ID: "u1", Role: "employee"}, nil),
		repo.EXPECT().GetByID(ctx, "u1").Return(&entity.UserProfile{ID: "u1", Role: "supervisor"}, nil),
	)

	r := usecase.NewRoleResolver(repo)
	first, _ := r.Resolve(ctx, entity.Identity{ID: "u1"})
	second, _ := r.Resolve(ctx, entity.Identity{ID: "u1"})

	assert.Equal(t, entity.RoleEmployee, first)
	assert.Equal(t, entity.RoleSupervisor, second)
}

func TestRoleResolver_EmptyIdentitySkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)

	got, err := usecase.NewRoleResolver(repo).Resolve(context.Background(), entity.Identity{})
	assert.NoError(t, err)
	assert.Equal(t, entity.RoleUnknown, got)
}
