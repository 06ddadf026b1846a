package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/videotube/internal/migrations"
	"github.com/magabrotheeeer/videotube/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
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
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

// TestDataFactory создаёт тестовые записи напрямую через SQL.
type TestDataFactory struct {
	t       *testing.T
	storage *Storage
}

func newFactory(t *testing.T, s *Storage) *TestDataFactory {
	return &TestDataFactory{t: t, storage: s}
}

func (f *TestDataFactory) CreateUser(username string) string {
	uid, err := f.storage.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     strings.ToUpper(username),
		Avatar:       "http://cdn.local/" + username + ".png",
		PasswordHash: "hash",
	})
	require.NoError(f.t, err)
	return uid
}

func (f *TestDataFactory) Subscribe(subscriberUID, channelUID string) {
	_, err := f.storage.DB.Exec(
		`INSERT INTO subscriptions (subscriber_uid, channel_uid) VALUES ($1, $2)`,
		subscriberUID, channelUID)
	require.NoError(f.t, err)
}

func (f *TestDataFactory) CreateVideo(title string, ownerUID *string) string {
	var uid string
	err := f.storage.DB.QueryRow(`
		INSERT INTO videos (video_file, thumbnail, title, description, duration, owner_uid)
		VALUES ($1, $2, $3, '', 12.5, $4) RETURNING uid`,
		"http://cdn.local/"+title+".mp4", "http://cdn.local/"+title+".jpg", title, ownerUID).Scan(&uid)
	require.NoError(f.t, err)
	return uid
}

func (f *TestDataFactory) SetWatchHistory(userUID string, videoUIDs ...string) {
	_, err := f.storage.DB.Exec(`UPDATE users SET watch_history = $2::uuid[] WHERE uid = $1`,
		userUID, "{"+strings.Join(videoUIDs, ",")+"}")
	require.NoError(f.t, err)
}
