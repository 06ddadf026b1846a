package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/models"
)

func registerNamed(t *testing.T, env *testEnv, username string) *models.SanitizedUser {
	t.Helper()
	return registerUser(t, env, RegisterInput{
		FullName:   username + " Full",
		Email:      username + "@example.com",
		Username:   username,
		Password:   "pw",
		AvatarPath: "temp/" + username + ".png",
	})
}

func TestUpdateAccountDetails(t *testing.T) {
	env := newTestEnv(Options{})
	u := registerNamed(t, env, "alice")
	registerNamed(t, env, "bob")
	ctx := context.Background()

	updated, err := env.svc.UpdateAccountDetails(ctx, u.UUID, "  Alice Liddell ", "alice@wonder.land")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "alice@wonder.land", updated.Email)

	_, err = env.svc.UpdateAccountDetails(ctx, u.UUID, "", "x@example.com")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.UpdateAccountDetails(ctx, u.UUID, "Alice", "bob@example.com")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = env.svc.UpdateAccountDetails(ctx, "missing", "Alice", "free@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateImage(t *testing.T) {
	tests := []struct {
		name        string
		kind        models.ImageKind
		cleanup     bool
		wantDeleted []string
	}{
		{name: "avatar keeps old object by default", kind: models.ImageAvatar},
		{
			name:        "avatar cleanup enabled",
			kind:        models.ImageAvatar,
			cleanup:     true,
			wantDeleted: []string{"https://cdn.example.com/temp/alice.png"},
		},
		{name: "cover without previous image", kind: models.ImageCover, cleanup: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(Options{CleanupReplacedMedia: tt.cleanup})
			u := registerNamed(t, env, "alice")

			updated, err := env.svc.UpdateImage(context.Background(), u.UUID, tt.kind, "temp/new.png")
			require.NoError(t, err)

			if tt.kind == models.ImageAvatar {
				assert.Equal(t, "https://cdn.example.com/temp/new.png", updated.Avatar)
			} else {
				assert.Equal(t, "https://cdn.example.com/temp/new.png", updated.CoverImage)
				assert.Equal(t, u.Avatar, updated.Avatar)
			}
			assert.Equal(t, tt.wantDeleted, env.media.deleted)
		})
	}
}

func TestUpdateImage_Failures(t *testing.T) {
	env := newTestEnv(Options{})
	u := registerNamed(t, env, "alice")
	ctx := context.Background()

	_, err := env.svc.UpdateImage(ctx, u.UUID, models.ImageAvatar, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	env.media.failPaths["temp/broken.png"] = true
	_, err = env.svc.UpdateImage(ctx, u.UUID, models.ImageCover, "temp/broken.png")
	assert.ErrorIs(t, err, apperror.ErrUpload)

	stored, err := env.repo.GetUserByID(ctx, u.UUID)
	require.NoError(t, err)
	assert.Empty(t, stored.CoverImage, "failed upload must leave the record unchanged")

	_, err = env.svc.UpdateImage(ctx, "missing", models.ImageAvatar, "temp/x.png")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetChannelProfile(t *testing.T) {
	env := newTestEnv(Options{})
	channel := registerNamed(t, env, "channel")
	viewer := registerNamed(t, env, "viewer")
	stranger := registerNamed(t, env, "stranger")
	ctx := context.Background()

	const n = 5
	for i := 0; i < n-1; i++ {
		fan := registerNamed(t, env, "fan"+string(rune('a'+i)))
		env.repo.subscribe(fan.UUID, channel.UUID)
	}
	env.repo.subscribe(viewer.UUID, channel.UUID)
	env.repo.subscribe(channel.UUID, stranger.UUID)

	p, err := env.svc.GetChannelProfile(ctx, "  Channel ", viewer.UUID)
	require.NoError(t, err)
	assert.Equal(t, n, p.SubscribersCount)
	assert.Equal(t, 1, p.ChannelsSubscribedToCount)
	assert.True(t, p.IsSubscribed)

	p, err = env.svc.GetChannelProfile(ctx, "channel", stranger.UUID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	p, err = env.svc.GetChannelProfile(ctx, "channel", "")
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)
	assert.Equal(t, n, p.SubscribersCount)

	_, err = env.svc.GetChannelProfile(ctx, "nonexistent", "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.svc.GetChannelProfile(ctx, "   ", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetChannelProfile_Cache(t *testing.T) {
	env := newTestEnv(Options{ProfileTTL: time.Second})
	channel := registerNamed(t, env, "channel")
	ctx := context.Background()

	first, err := env.svc.GetChannelProfile(ctx, "channel", "")
	require.NoError(t, err)
	second, err := env.svc.GetChannelProfile(ctx, "channel", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.repo.profileCalls)

	_, err = env.svc.UpdateAccountDetails(ctx, channel.UUID, "Renamed", "channel@example.com")
	require.NoError(t, err)

	third, err := env.svc.GetChannelProfile(ctx, "channel", "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", third.FullName)
	assert.Equal(t, 2, env.repo.profileCalls)
}

func TestGetChannelProfile_CacheDisabled(t *testing.T) {
	env := newTestEnv(Options{})
	registerNamed(t, env, "channel")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.GetChannelProfile(ctx, "channel", "")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, env.repo.profileCalls)
	assert.Empty(t, env.cache.items)
}

func TestGetWatchHistory(t *testing.T) {
	env := newTestEnv(Options{})
	u := registerNamed(t, env, "watcher")
	ctx := context.Background()

	got, err := env.svc.GetWatchHistory(ctx, u.UUID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	env.repo.history[u.UUID] = []models.WatchedVideo{
		{UUID: "v2", Title: "second", Owner: &models.VideoOwner{Username: "owner"}},
		{UUID: "v1", Title: "first"},
	}
	got, err = env.svc.GetWatchHistory(ctx, u.UUID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v2", got[0].UUID)
	assert.Nil(t, got[1].Owner)

	_, err = env.svc.GetWatchHistory(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
