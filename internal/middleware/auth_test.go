package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tarjama/api/internal/auth"
	"github.com/tarjama/api/internal/model"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	group := r.Group("/", AuthMiddleware(testSecret))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": c.GetInt64("userID"),
			"role":   c.GetString("userRole"),
		})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(&model.User{ID: 7, Email: "u@example.com", Role: role}, testSecret)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w := request(protectedRouter(), "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	w := request(protectedRouter(), "Token abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(protectedRouter(), "Bearer")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := request(protectedRouter(), "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	w := request(protectedRouter(), "Bearer "+validToken(t, model.RoleViewer))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"userId":7`)
	require.Contains(t, w.Body.String(), model.RoleViewer)
}

func TestRequireRole_Matrix(t *testing.T) {
	cases := []struct {
		name     string
		allowed  []string
		role     string
		wantCode int
	}{
		{name: "viewer denied editor route", allowed: []string{model.RoleAdmin, model.RoleArabicEditor}, role: model.RoleViewer, wantCode: http.StatusForbidden},
		{name: "admin allowed", allowed: []string{model.RoleAdmin}, role: model.RoleAdmin, wantCode: http.StatusOK},
		{name: "arabic editor allowed on editor route", allowed: []string{model.RoleAdmin, model.RoleArabicEditor}, role: model.RoleArabicEditor, wantCode: http.StatusOK},
		{name: "translations editor denied admin route", allowed: []string{model.RoleAdmin}, role: model.RoleTranslationsEditor, wantCode: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := request(protectedRouter(tc.allowed...), "Bearer "+validToken(t, tc.role))
			require.Equal(t, tc.wantCode, w.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(OptionalAuthMiddleware(testSecret))
	r.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetInt64("userID")})
	})

	// No header still passes through
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"userId":0`)

	// Valid token fills the context
	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+validToken(t, model.RoleViewer))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Contains(t, w.Body.String(), `"userId":7`)
}
