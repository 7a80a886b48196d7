package stripewebhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oficinacloud/oficina-backend/internal/models"
	"github.com/oficinacloud/oficina-backend/internal/services/billing"
)

const secret = "stripe-secret"

type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessEvent(ctx context.Context, evt billing.ProviderEvent) (billing.Outcome, error) {
	args := m.Called(ctx, evt)
	return args.Get(0).(billing.Outcome), args.Error(1)
}

func TestStripeWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	validBody := `{
		"type": "invoice.payment_succeeded",
		"data": {
			"object": {
				"id": "in_123",
				"amount_total": 9990,
				"customer_email": "dono@oficina.com.br",
				"metadata": {"user_uid": "uid-1", "plan_type": "premium_anual"}
			}
		}
	}`

	tests := []struct {
		name           string
		authHeader     string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "успешная обработка",
			authHeader: "Bearer " + secret,
			body:       validBody,
			setupMock: func(m *MockService) {
				m.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(evt billing.ProviderEvent) bool {
					return evt.Provider == "stripe" &&
						evt.Event == "invoice.payment_succeeded" &&
						evt.MetadataUserUID == "uid-1" &&
						evt.PlanType == "premium_anual" &&
						evt.Amount == 99.90 &&
						evt.TransactionID == "in_123"
				})).Return(billing.Outcome{Handled: true, UserUID: "uid-1", Status: models.StatusActive}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"success":true`,
		},
		{
			name:           "неверный токен",
			authHeader:     "Bearer wrong",
			body:           validBody,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid token"`,
		},
		{
			name:           "нет заголовка Authorization",
			authHeader:     "",
			body:           validBody,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "нет типа события",
			authHeader:     "Bearer " + secret,
			body:           `{"data":{"object":{"id":"in_123"}}}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"type is required"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, secret)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(tt.body))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			mockService.AssertExpectations(t)
		})
	}
}
