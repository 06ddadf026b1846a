package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/videotube/internal/events"
	"github.com/magabrotheeeer/videotube/internal/lib/jwt"
	"github.com/magabrotheeeer/videotube/internal/models"
	"github.com/magabrotheeeer/videotube/internal/storage"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// memoryRepo хранит пользователей в памяти и повторяет семантику storage.Storage.
type memoryRepo struct {
	mu            sync.Mutex
	users         map[string]*models.User
	subscriptions [][2]string // subscriber, channel
	history       map[string][]models.WatchedVideo
	profileCalls  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:   map[string]*models.User{},
		history: map[string][]models.WatchedVideo{},
	}
}

func (r *memoryRepo) CreateUser(_ context.Context, user models.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return "", storage.ErrUserExists
		}
	}
	user.UUID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.UUID] = &user
	return user.UUID, nil
}

func (r *memoryRepo) GetUserByID(_ context.Context, userUID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) FindUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (r *memoryRepo) SetRefreshToken(_ context.Context, userUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.RefreshToken = &token
	return nil
}

func (r *memoryRepo) RotateRefreshToken(_ context.Context, userUID, oldToken, newToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != oldToken {
		return false, nil
	}
	u.RefreshToken = &newToken
	return true, nil
}

func (r *memoryRepo) ClearRefreshToken(_ context.Context, userUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.RefreshToken = nil
	return nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, userUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memoryRepo) UpdateAccountDetails(_ context.Context, userUID, fullName, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	for uid, other := range r.users {
		if uid != userUID && other.Email == email {
			return nil, storage.ErrUserExists
		}
	}
	u.FullName = fullName
	u.Email = email
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) UpdateImage(_ context.Context, userUID string, kind models.ImageKind, url string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	if kind == models.ImageAvatar {
		u.Avatar = url
	} else {
		u.CoverImage = url
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) GetChannelProfile(_ context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profileCalls++
	for _, u := range r.users {
		if u.Username != username {
			continue
		}
		p := &models.ChannelProfile{
			UUID:       u.UUID,
			FullName:   u.FullName,
			Username:   u.Username,
			Email:      u.Email,
			Avatar:     u.Avatar,
			CoverImage: u.CoverImage,
		}
		for _, edge := range r.subscriptions {
			if edge[1] == u.UUID {
				p.SubscribersCount++
				if viewerUID != "" && edge[0] == viewerUID {
					p.IsSubscribed = true
				}
			}
			if edge[0] == u.UUID {
				p.ChannelsSubscribedToCount++
			}
		}
		return p, nil
	}
	return nil, storage.ErrUserNotFound
}

func (r *memoryRepo) GetWatchHistory(_ context.Context, userUID string) ([]models.WatchedVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userUID]; !ok {
		return nil, storage.ErrUserNotFound
	}
	return r.history[userUID], nil
}

func (r *memoryRepo) subscribe(subscriberUID, channelUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = append(r.subscriptions, [2]string{subscriberUID, channelUID})
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// fakeMedia отдаёт предсказуемые URL и запоминает вызовы.
type fakeMedia struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	failPaths map[string]bool
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPaths[localPath] {
		return "", errors.New("media host unavailable")
	}
	m.uploaded = append(m.uploaded, localPath)
	return "https://cdn.example.com/" + localPath, nil
}

func (m *fakeMedia) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return nil
}

// mapCache простой кеш в памяти без учёта TTL.
type mapCache struct {
	mu    sync.Mutex
	items map[string]models.ChannelProfile
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string]models.ChannelProfile{}}
}

func (c *mapCache) Get(_ context.Context, key string, result any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return false, nil
	}
	*(result.(*models.ChannelProfile)) = v
	return true, nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = *(value.(*models.ChannelProfile))
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

// PublisherMock мок публикатора событий.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, event events.AccountEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// RepoMock мок хранилища для проверки ошибок инфраструктуры.
type RepoMock struct {
	mock.Mock
	UserRepository
}

func (m *RepoMock) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) SetRefreshToken(ctx context.Context, userUID, token string) error {
	args := m.Called(ctx, userUID, token)
	return args.Error(0)
}

func newTestMaker() *jwt.MakerImpl {
	return jwt.NewJWTMaker("access-secret", 15*time.Minute, "refresh-secret", time.Hour)
}

type testEnv struct {
	svc   *UserService
	repo  *memoryRepo
	media *fakeMedia
	cache *mapCache
}

func newTestEnv(opts Options) *testEnv {
	repo := newMemoryRepo()
	media := &fakeMedia{failPaths: map[string]bool{}}
	cache := newMapCache()
	svc := NewUserService(newNoopLogger(), repo, newTestMaker(), media, cache, nil, nil, opts)
	return &testEnv{svc: svc, repo: repo, media: media, cache: cache}
}

func errNotFoundForMock() error {
	return storage.ErrUserNotFound
}
