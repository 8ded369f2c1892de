package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", "user-1", "riverside-fc", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "riverside-fc", claims.Club)
	assert.Equal(t, "admin", claims.Role)

	_, err = ValidateToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("s3cret", "user-1", "riverside-fc", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("s3cret", token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(secret))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	t.Run("disabled without secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("s3cret").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken("s3cret", "user-1", "riverside-fc", "coach", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter("s3cret").ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
