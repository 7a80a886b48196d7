package middlewarectx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
	}{
		{"admin passes", models.RoleAdmin, http.StatusOK},
		{"superadmin passes", models.RoleSuperadmin, http.StatusOK},
		{"user denied", models.RoleUser, http.StatusForbidden},
		{"missing role denied", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			w := httptest.NewRecorder()

			RequireAdmin(newNoopLogger())(testHandler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
