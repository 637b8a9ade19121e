package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newAuthRouter(apiToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, apiToken))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"subject": c.GetString("auth_subject"),
		})
	})
	return r
}

func requestWithAuth(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter("")
	w := requestWithAuth(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r := newAuthRouter("")
	w := requestWithAuth(r, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsStaticAPIToken(t *testing.T) {
	r := newAuthRouter("cleanup-token")
	w := requestWithAuth(r, "Bearer cleanup-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api-token")
}

func TestAuthRejectsWrongStaticToken(t *testing.T) {
	r := newAuthRouter("cleanup-token")
	w := requestWithAuth(r, "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthEmptyAPITokenNeverMatches(t *testing.T) {
	// 未配置静态令牌时，空 Bearer 不能因为两边都为空而通过
	r := newAuthRouter("")
	w := requestWithAuth(r, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsValidJWT(t *testing.T) {
	r := newAuthRouter("")
	token := signToken(t, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	w := requestWithAuth(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthRejectsExpiredJWT(t *testing.T) {
	r := newAuthRouter("")
	token := signToken(t, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})

	w := requestWithAuth(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongSigningKey(t *testing.T) {
	r := newAuthRouter("")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "mallory",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w := requestWithAuth(r, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
