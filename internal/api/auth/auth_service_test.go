package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type MockAuthRepo struct {
	mock.Mock
}

var _ AuthRepo = (*MockAuthRepo)(nil)

func (m *MockAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	return m.Called(ctx, userID, newHashedPassword).Error(0)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return m.Called(ctx, userID, token, expiresAt).Error(0)
}

func (m *MockAuthRepo) GetRefreshTokenInfo(ctx context.Context, token string) (string, time.Time, *time.Time, error) {
	args := m.Called(ctx, token)
	var revoked *time.Time
	if args.Get(2) != nil {
		revoked = args.Get(2).(*time.Time)
	}
	return args.String(0), args.Get(1).(time.Time), revoked, args.Error(3)
}

func (m *MockAuthRepo) InvalidateRefreshToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:  "test-secret",
		Issuer:     "go-trip-planner",
		Audience:   "go-trip-planner-api",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, testJWTConfig(), logger)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a bcrypt hash, never the raw password", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)

		repo.On("CreateUser", mock.Anything, "alex", "alex@example.com", mock.MatchedBy(func(hash string) bool {
			return hash != "hunter2secret" &&
				bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2secret")) == nil
		})).Return("user-1", nil).Once()

		userID, err := svc.Register(ctx, "alex", "alex@example.com", "hunter2secret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email surfaces conflict", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		repo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", ErrConflict).Once()

		_, err := svc.Register(ctx, "alex", "alex@example.com", "hunter2secret")
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	user := &types.UserAuth{
		ID:       "user-1",
		Username: "alex",
		Email:    "alex@example.com",
	}

	t.Run("valid credentials issue a signed access token and a stored refresh token", func(t *testing.T) {
		u := *user
		u.Password = hashOf(t, "hunter2secret")
		repo := new(MockAuthRepo)
		svc := newTestService(repo)

		repo.On("GetUserByEmail", mock.Anything, "alex@example.com").Return(&u, nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil).Once()

		access, refresh, err := svc.Login(ctx, "alex@example.com", "hunter2secret")
		require.NoError(t, err)
		require.NotEmpty(t, refresh)

		claims := &types.Claims{}
		token, err := jwt.ParseWithClaims(access, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "go-trip-planner", claims.Issuer)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		u := *user
		u.Password = hashOf(t, "hunter2secret")
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		repo.On("GetUserByEmail", mock.Anything, "alex@example.com").Return(&u, nil).Once()

		_, _, err := svc.Login(ctx, "alex@example.com", "wrong")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		repo.AssertNotCalled(t, "StoreRefreshToken")
	})

	t.Run("unknown email is unauthenticated, not found", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()
	user := &types.UserAuth{ID: "user-1", Username: "alex", Email: "alex@example.com"}

	t.Run("live token rotates", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)

		repo.On("GetRefreshTokenInfo", mock.Anything, "old-token").
			Return("user-1", time.Now().Add(time.Hour), nil, nil).Once()
		repo.On("GetUserByID", mock.Anything, "user-1").Return(user, nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("InvalidateRefreshToken", mock.Anything, "old-token").Return(nil).Once()

		access, refresh, err := svc.RefreshSession(ctx, "old-token")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, "old-token", refresh)
		repo.AssertExpectations(t)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		repo.On("GetRefreshTokenInfo", mock.Anything, "stale").
			Return("user-1", time.Now().Add(-time.Minute), nil, nil).Once()

		_, _, err := svc.RefreshSession(ctx, "stale")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		revoked := time.Now().Add(-time.Minute)
		repo.On("GetRefreshTokenInfo", mock.Anything, "revoked").
			Return("user-1", time.Now().Add(time.Hour), &revoked, nil).Once()

		_, _, err := svc.RefreshSession(ctx, "revoked")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the hash and revokes all refresh tokens", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		user := &types.UserAuth{ID: "user-1", Password: hashOf(t, "oldpassword")}

		repo.On("GetUserByID", mock.Anything, "user-1").Return(user, nil).Once()
		repo.On("UpdatePassword", mock.Anything, "user-1", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) == nil
		})).Return(nil).Once()
		repo.On("InvalidateAllUserRefreshTokens", mock.Anything, "user-1").Return(nil).Once()

		require.NoError(t, svc.ChangePassword(ctx, "user-1", "oldpassword", "newpassword1"))
		repo.AssertExpectations(t)
	})

	t.Run("wrong old password changes nothing", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		user := &types.UserAuth{ID: "user-1", Password: hashOf(t, "oldpassword")}
		repo.On("GetUserByID", mock.Anything, "user-1").Return(user, nil).Once()

		err := svc.ChangePassword(ctx, "user-1", "wrong", "newpassword1")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		repo.AssertNotCalled(t, "UpdatePassword")
	})
}
