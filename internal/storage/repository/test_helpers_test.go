package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/content-platform/internal/migrations"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, username string, tier models.Tier) string {
	t.Helper()
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
		Tier:         tier,
	})
	require.NoError(t, err)
	return uid
}

// CreateEvent создает тестовое событие
func (f *TestDataFactory) CreateEvent(t *testing.T, slug string, startsAt, endsAt time.Time, tiers ...models.Tier) int {
	t.Helper()
	id, err := f.storage.CreateContent(context.Background(), models.Content{
		Kind:         models.KindEvent,
		Slug:         slug,
		Title:        "Event " + slug,
		Locale:       "en",
		AllowedTiers: tiers,
		StartsAt:     &startsAt,
		EndsAt:       &endsAt,
	})
	require.NoError(t, err)
	return id
}

// CreatePost создает тестовую запись блога
func (f *TestDataFactory) CreatePost(t *testing.T, slug, locale string, tiers ...models.Tier) int {
	t.Helper()
	id, err := f.storage.CreateContent(context.Background(), models.Content{
		Kind:         models.KindBlogPost,
		Slug:         slug,
		Title:        "Post " + slug,
		Locale:       locale,
		AllowedTiers: tiers,
	})
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, connStr)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, migrationsPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
