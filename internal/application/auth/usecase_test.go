package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/auth"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	repomock "github.com/Howzley/EEIRS-14-SP2025/internal/domain/repository/mock"
	pkgjwt "github.com/Howzley/EEIRS-14-SP2025/pkg/jwt"
)

const secret = "auth-test-secret"

func setup(t *testing.T) (*auth.AuthUseCase, *repomock.MockUserRepository) {
	ctrl := gomock.NewController(t)
	repo := repomock.NewMockUserRepository(ctrl)
	uc := auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "eeris-test"})
	return uc, repo
}

func TestSignUp_CreatesEmployeeProfile(t *testing.T) {
	uc, repo := setup(t)
	ctx := context.Background()

	repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(nil, nil)
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *entity.UserProfile) error {
		assert.Equal(t, "ana@example.com", u.Email)
		assert.Equal(t, string(entity.RoleEmployee), u.Role)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
		return nil
	})

	out, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "  Ana@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "employee", out.Role)
	assert.Equal(t, "ana@example.com", out.Email)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	uc, repo := setup(t)
	ctx := context.Background()

	repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(&entity.UserProfile{ID: "1"}, nil)

	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestSignUp_InvalidInputNeverTouchesStore(t *testing.T) {
	uc, _ := setup(t)

	_, err := uc.SignUp(context.Background(), dto.SignUpRequest{Email: "ana@example.com", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_IssuesToken(t *testing.T) {
	uc, repo := setup(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(&entity.UserProfile{
		ID: "user-1", Email: "ana@example.com", Role: "supervisor", PasswordHash: string(hash),
	}, nil)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	id, email, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, "ana@example.com", email)
	assert.Equal(t, "supervisor", out.User.Role)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		uc, repo := setup(t)
		repo.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, nil)
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
	t.Run("wrong password", func(t *testing.T) {
		uc, repo := setup(t)
		repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(&entity.UserProfile{ID: "1", PasswordHash: string(hash)}, nil)
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
	t.Run("empty fields", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.Login(ctx, dto.LoginRequest{})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
	t.Run("store failure is not unauthorized", func(t *testing.T) {
		uc, repo := setup(t)
		repo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(nil, errors.New("connection reset"))
		_, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUnauthorized)
	})
}
