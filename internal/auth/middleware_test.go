package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.RegisteredClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newRouter(audience string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWTMiddleware(testSecret, audience, zap.NewNop()), func(c *gin.Context) {
		userID, _ := GetUserID(c.Request.Context())
		c.String(http.StatusOK, userID)
	})
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	resp := serve(newRouter(""), "Bearer "+token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != "user-42" {
		t.Fatalf("expected subject in context, got %q", resp.Body.String())
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	valid := jwt.RegisteredClaims{Subject: "user", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	expired := jwt.RegisteredClaims{Subject: "user", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	noSubject := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name     string
		audience string
		header   string
	}{
		{"missing header", "", ""},
		{"wrong scheme", "", "Basic abc"},
		{"empty token", "", "Bearer  "},
		{"wrong secret", "", "Bearer " + signToken(t, valid, jwt.SigningMethodHS256, []byte("other"))},
		{"wrong method", "", "Bearer " + signToken(t, valid, jwt.SigningMethodHS512, []byte(testSecret))},
		{"expired", "", "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, []byte(testSecret))},
		{"missing subject", "", "Bearer " + signToken(t, noSubject, jwt.SigningMethodHS256, []byte(testSecret))},
		{"wrong audience", "insultr", "Bearer " + signToken(t, valid, jwt.SigningMethodHS256, []byte(testSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(newRouter(tt.audience), tt.header)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
		})
	}
}

func TestGetUserIDWithoutValue(t *testing.T) {
	if _, ok := GetUserID(context.Background()); ok {
		t.Fatal("expected no user in empty context")
	}
	if id, ok := GetUserID(WithUserID(context.Background(), "u")); !ok || id != "u" {
		t.Fatalf("expected stored user, got %q", id)
	}
}
