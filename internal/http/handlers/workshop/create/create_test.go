package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oficinacloud/oficina-backend/internal/http/middlewarectx"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, userUID string, req models.DummyWorkshop) (string, error) {
	args := m.Called(ctx, userUID, req)
	return args.String(0), args.Error(1)
}

func newRequest(userUID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/workshops", strings.NewReader(body))
	if userUID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, userUID))
	}
	return req
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		userUID        string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная регистрация мастерской",
			userUID: "uid-1",
			body:    `{"name":"Auto Center Silva"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "uid-1", models.DummyWorkshop{Name: "Auto Center Silva"}).
					Return("workshop-id-1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"workshop_id":"workshop-id-1"`,
		},
		{
			name:           "нет идентификатора пользователя",
			userUID:        "",
			body:           `{"name":"Auto Center Silva"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:           "слишком короткое название",
			userUID:        "uid-1",
			body:           `{"name":"A"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Name`,
		},
		{
			name:           "некорректный JSON",
			userUID:        "uid-1",
			body:           `{not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"failed to decode request"`,
		},
		{
			name:    "ошибка сервиса",
			userUID: "uid-1",
			body:    `{"name":"Auto Center Silva"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "uid-1", mock.Anything).
					Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"could not register workshop"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest(tt.userUID, tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
