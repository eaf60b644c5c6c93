package migrations

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("content"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	return dir
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_CreatesSchema(t *testing.T) {
	db := newTestDB(t)

	version, err := Run(db, migrationsDir(t), discard())
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	for _, table := range []string{"users", "contents", "event_registrations", "subscriptions"} {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.Truef(t, exists, "table %q should exist", table)
	}

	var indexed bool
	err = db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = 'public' AND indexname = 'idx_contents_starts_at'
	)`).Scan(&indexed)
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestRun_SchemaConstraints(t *testing.T) {
	db := newTestDB(t)
	_, err := Run(db, migrationsDir(t), discard())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
	}{
		{name: "empty allowed tiers", query: `INSERT INTO contents (kind, slug, title, allowed_tiers) VALUES ('blog_post', 'a', 't', '{}')`},
		{name: "unknown kind", query: `INSERT INTO contents (kind, slug, title) VALUES ('podcast', 'b', 't')`},
		{name: "unknown user tier", query: `INSERT INTO users (email, username, password_hash, tier) VALUES ('a@b.c', 'a', 'h', 'GOLD')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.query)
			assert.Error(t, err)
		})
	}

	_, err = db.Exec(`INSERT INTO contents (kind, slug, title, allowed_tiers) VALUES ('event', 'c', 't', NULL)`)
	assert.NoError(t, err, "public content stores NULL tiers")
}

func TestRun_Idempotent(t *testing.T) {
	db := newTestDB(t)

	first, err := Run(db, migrationsDir(t), discard())
	require.NoError(t, err)
	second, err := Run(db, migrationsDir(t), discard())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_DirtySchema(t *testing.T) {
	db := newTestDB(t)
	_, err := Run(db, migrationsDir(t), discard())
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE schema_migrations SET dirty = true`)
	require.NoError(t, err)

	_, err = Run(db, migrationsDir(t), discard())
	assert.ErrorIs(t, err, ErrDirty)
}

func TestRun_MissingDirectory(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, filepath.Join(t.TempDir(), "absent"), discard())
	assert.Error(t, err)
}
