package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-platform/internal/cache"
	customjwt "github.com/magabrotheeeer/content-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/content-platform/internal/lib/password"
	"github.com/magabrotheeeer/content-platform/internal/models"
	services "github.com/magabrotheeeer/content-platform/internal/services/auth"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role, useruid string) (string, error) {
	args := m.Called(username, role, useruid)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.Claims), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     error
		errMsg      string
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						user.PasswordHash != "" &&
						user.PasswordHash != "password123" &&
						user.RoleType == "authenticated" &&
						user.Tier == models.TierFree
				})).Return("some-uuid-string", nil).Once()
			},
			wantUserUID: "some-uuid-string",
		},
		{
			name: "duplicate user",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", repository.ErrAlreadyExists).Once()
			},
			wantErr: services.ErrUserExists,
		},
		{
			name: "repository error",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", errors.New("db error")).Once()
			},
			errMsg: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			c, _ := newTestCache(t)
			svc := services.NewAuthService(repo, new(JwtMakerMock), c, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "test@example.com", "testuser", "password123")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.Hash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		UUID:         "user-1",
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: hashedPassword,
		RoleName:     "Mentor",
		RoleType:     "mentor",
		Tier:         models.TierBasic,
	}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
				j.On("GenerateToken", "testuser", "mentor", "user-1").Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "nonexistent").Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			c, _ := newTestCache(t)
			svc := services.NewAuthService(repo, jwtMock, c, newNoopLogger())
			tt.setupMocks(repo, jwtMock)

			token, p, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, models.TierBasic, p.Tier)
				assert.Equal(t, models.RoleMentor, p.Role)
				assert.True(t, p.Authenticated)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ResolvePrincipal_CachesPrincipal(t *testing.T) {
	repo := new(UserRepoMock)
	jwtMock := new(JwtMakerMock)
	c, mr := newTestCache(t)
	svc := services.NewAuthService(repo, jwtMock, c, newNoopLogger())

	jwtMock.On("ParseToken", "tok").Return(&customjwt.Claims{UserUID: "user-1"}, nil)
	repo.On("GetUser", mock.Anything, "user-1").Return(&models.User{
		UUID: "user-1", Username: "alice", Tier: models.TierPremium, RoleType: "authenticated",
	}, nil).Once()

	p, err := svc.ResolvePrincipal(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, p.Tier)
	assert.True(t, mr.Exists("principal:user-1"))

	p, err = svc.ResolvePrincipal(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	repo.AssertNumberOfCalls(t, "GetUser", 1)

	mr.FastForward(services.PrincipalTTL + time.Second)
	assert.False(t, mr.Exists("principal:user-1"))
}

func TestAuthService_ResolvePrincipal_Errors(t *testing.T) {
	t.Run("bad token", func(t *testing.T) {
		jwtMock := new(JwtMakerMock)
		c, _ := newTestCache(t)
		svc := services.NewAuthService(new(UserRepoMock), jwtMock, c, newNoopLogger())
		jwtMock.On("ParseToken", "bad").Return(nil, errors.New("signature is invalid"))

		_, err := svc.ResolvePrincipal(context.Background(), "bad")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		repo := new(UserRepoMock)
		jwtMock := new(JwtMakerMock)
		c, _ := newTestCache(t)
		svc := services.NewAuthService(repo, jwtMock, c, newNoopLogger())
		jwtMock.On("ParseToken", "tok").Return(&customjwt.Claims{UserUID: "gone"}, nil)
		repo.On("GetUser", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

		_, err := svc.ResolvePrincipal(context.Background(), "tok")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("storage failure is not an invalid token", func(t *testing.T) {
		repo := new(UserRepoMock)
		jwtMock := new(JwtMakerMock)
		c, _ := newTestCache(t)
		svc := services.NewAuthService(repo, jwtMock, c, newNoopLogger())
		jwtMock.On("ParseToken", "tok").Return(&customjwt.Claims{UserUID: "u"}, nil)
		repo.On("GetUser", mock.Anything, "u").Return(nil, errors.New("connection reset"))

		_, err := svc.ResolvePrincipal(context.Background(), "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("cache outage falls back to storage", func(t *testing.T) {
		repo := new(UserRepoMock)
		jwtMock := new(JwtMakerMock)
		c, mr := newTestCache(t)
		svc := services.NewAuthService(repo, jwtMock, c, newNoopLogger())
		mr.Close()
		jwtMock.On("ParseToken", "tok").Return(&customjwt.Claims{UserUID: "u"}, nil)
		repo.On("GetUser", mock.Anything, "u").Return(&models.User{UUID: "u"}, nil)

		p, err := svc.ResolvePrincipal(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, models.TierFree, p.Tier)
	})
}
