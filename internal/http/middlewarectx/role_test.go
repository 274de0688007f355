package middlewarectx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	const msg = "You do not have permission to add slots."

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole(newNoopLogger(), "Teacher", msg)(next)

	tests := []struct {
		name           string
		role           any
		wantStatusCode int
	}{
		{"matching role passes", "Teacher", http.StatusOK},
		{"other role forbidden", "Student", http.StatusForbidden},
		{"missing role forbidden", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/teacher-slots", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantStatusCode == http.StatusForbidden {
				var got map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, msg, got["msg"])
				assert.Equal(t, float64(http.StatusForbidden), got["status"])
			}
		})
	}
}
