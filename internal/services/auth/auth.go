// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/cache"
	"github.com/magabrotheeeer/content-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/content-platform/internal/lib/password"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

// PrincipalTTL — время жизни принципала в кеше.
const PrincipalTTL = 10 * time.Minute

var (
	// ErrInvalidCredentials — неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists — имя пользователя или почта уже заняты.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken — токен не прошёл проверку или пользователь удалён.
	ErrInvalidToken = errors.New("invalid token")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUser возвращает пользователя по идентификатору.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache хранит принципалов между запросами.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AuthService отвечает за регистрацию, авторизацию и разрешение принципала по JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	cache    Cache
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, cache Cache, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		cache:    cache,
		log:      log,
	}
}

// Register создает нового пользователя уровня FREE с ролью authenticated.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		RoleName:     models.RoleAuthenticated.Name,
		RoleType:     models.RoleAuthenticated.Type,
		Tier:         models.TierFree,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return "", fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, models.Principal, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Verify(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	p := user.Principal()
	token, err := s.jwtMaker.GenerateToken(user.Username, p.Role.Type, user.UUID)
	if err != nil {
		return "", models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, p, nil
}

// ResolvePrincipal проверяет JWT и возвращает принципала с актуальными
// уровнем и ролью. Принципал кешируется по идентификатору пользователя.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (models.Principal, error) {
	const op = "services.auth.ResolvePrincipal"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	key := cache.PrincipalKey(claims.UserUID)
	var cached models.Principal
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("principal cache read failed", slog.String("user_uid", claims.UserUID), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	user, err := s.users.GetUser(ctx, claims.UserUID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	p := user.Principal()
	if err := s.cache.Set(ctx, key, p, PrincipalTTL); err != nil {
		s.log.Warn("principal cache write failed", slog.String("user_uid", p.UserUID), sl.Err(err))
	}
	return p, nil
}
