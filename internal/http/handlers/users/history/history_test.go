package history

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/videotube/internal/apperror"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetWatchHistory(ctx context.Context, userUID string) ([]models.WatchedVideo, error) {
	args := m.Called(ctx, userUID)
	v, _ := args.Get(0).([]models.WatchedVideo)
	return v, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHistoryHandler_ServeHTTP(t *testing.T) {
	t.Run("ordered videos with owners", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("GetWatchHistory", mock.Anything, "u1").Return([]models.WatchedVideo{
			{UUID: "v2", Title: "second", Owner: &models.VideoOwner{Username: "ab"}},
			{UUID: "v1", Title: "first"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.SanitizedUser{UUID: "u1"}))
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "v2", resp.Data[0]["_id"])
		assert.Contains(t, resp.Data[0], "owner")
		assert.NotContains(t, resp.Data[1], "owner")
		svc.AssertExpectations(t)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("GetWatchHistory", mock.Anything, "u1").Return([]models.WatchedVideo{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.SanitizedUser{UUID: "u1"}))
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})

	t.Run("user vanished", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("GetWatchHistory", mock.Anything, "u1").Return(nil, apperror.NotFound("User does not exist")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.SanitizedUser{UUID: "u1"}))
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := new(ServiceMock)
		rec := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "GetWatchHistory", mock.Anything, mock.Anything)
	})
}
