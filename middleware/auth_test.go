package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := utils.NewJWTService("test-secret")
	token, _, err := jwtService.GenerateAccessToken("helmet-01")
	require.NoError(t, err)

	router := gin.New()
	router.Use(NewAuthMiddleware(jwtService).RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("subject"))
	})
	return router, token
}

func TestRequireAuthBearerHeader(t *testing.T) {
	router, token := newProtectedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "helmet-01", rec.Body.String())
}

func TestRequireAuthQueryToken(t *testing.T) {
	router, token := newProtectedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	router, _ := newProtectedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsForgedToken(t *testing.T) {
	router, _ := newProtectedRouter(t)

	forged, _, err := utils.NewJWTService("other-secret").GenerateAccessToken("helmet-01")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
