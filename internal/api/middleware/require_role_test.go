package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/teachback/internal/models"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		role    any
		allowed []models.UserRole
		pass    bool
	}{
		{"admin allowed", "admin", []models.UserRole{models.RoleAdmin}, true},
		{"case and whitespace normalized", " Admin ", []models.UserRole{models.RoleAdmin}, true},
		{"plain user rejected", "user", []models.UserRole{models.RoleAdmin}, false},
		{"missing role rejected", nil, []models.UserRole{models.RoleAdmin}, false},
		{"user allowed when listed", "user", []models.UserRole{models.RoleUser, models.RoleAdmin}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/quota/u1", nil)
			if tt.role != nil {
				c.Set("role", tt.role)
			}

			RequireRole(tt.allowed...)(c)

			if tt.pass && c.IsAborted() {
				t.Errorf("aborted with status %d, want pass", w.Code)
			}
			if !tt.pass {
				if !c.IsAborted() {
					t.Fatal("request passed, want forbidden")
				}
				if w.Code != http.StatusForbidden {
					t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
				}
			}
		})
	}
}
