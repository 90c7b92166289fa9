package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pedago-dev/portal/internal/access"
	"github.com/pedago-dev/portal/internal/auth"
	"github.com/pedago-dev/portal/internal/models"
	"github.com/pedago-dev/portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestRouter(t *testing.T) *gin.Engine {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization token is required")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func adminTestContext(actor *access.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if actor != nil {
		ctx.Set(types.ContextActorKey, *actor)
	}
	return ctx, w
}

func TestRequireAdmin_NoActor(t *testing.T) {
	ctx, w := adminTestContext(nil)

	RequireAdmin()(ctx)

	assert.True(t, ctx.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	tests := []struct {
		name string
		role string
	}{
		{"viewer", models.RoleViewer},
		{"manager", models.RoleManager},
		{"analyst", models.RoleAnalyst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, w := adminTestContext(&access.Actor{ID: 1, Role: tt.role})

			RequireAdmin()(ctx)

			assert.True(t, ctx.IsAborted())
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "Administrator access required")
		})
	}
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	ctx, _ := adminTestContext(&access.Actor{ID: 1, Role: models.RoleAdmin})

	RequireAdmin()(ctx)

	assert.False(t, ctx.IsAborted())
}
