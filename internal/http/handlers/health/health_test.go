package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) CheckDatabaseReady(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	t.Run("сервис готов", func(t *testing.T) {
		mockPinger := new(MockPinger)
		mockPinger.On("CheckDatabaseReady", mock.Anything).Return(nil)

		handler := New(logger, mockPinger)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ok"`)
	})

	t.Run("база данных недоступна", func(t *testing.T) {
		mockPinger := new(MockPinger)
		mockPinger.On("CheckDatabaseReady", mock.Anything).Return(errors.New("connection refused"))

		handler := New(logger, mockPinger)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database is not ready"`)
	})
}
