package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
)

// fakeVerifier accepts exactly one token value.
func fakeVerifier(valid string) tokenVerifier {
	return func(ctx context.Context, raw string) (*oidc.IDToken, error) {
		if raw == valid {
			return &oidc.IDToken{Subject: "user-1"}, nil
		}
		return nil, assert.AnError
	}
}

func TestAuthMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	newReq := func(authorization string) *http.Request {
		req := httptest.NewRequest("GET", "/api/equipment", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		return req
	}

	t.Run("Bypass", func(t *testing.T) {
		srv := &Server{bypassAuth: true}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq(""))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		srv := &Server{}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq("Bearer good-token"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"authentication is not configured"}`, w.Body.String())
	})

	t.Run("MissingHeader", func(t *testing.T) {
		srv := &Server{oidcVerifier: fakeVerifier("good-token")}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq(""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"missing authorization header"}`, w.Body.String())
	})

	t.Run("NotBearer", func(t *testing.T) {
		srv := &Server{oidcVerifier: fakeVerifier("good-token")}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq("Basic dXNlcjpwYXNz"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		srv := &Server{oidcVerifier: fakeVerifier("good-token")}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq("Bearer wrong-token"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid bearer token"}`, w.Body.String())
	})

	t.Run("ValidToken", func(t *testing.T) {
		srv := &Server{oidcVerifier: fakeVerifier("good-token")}
		w := httptest.NewRecorder()
		srv.authMiddleware(okHandler).ServeHTTP(w, newReq("Bearer good-token"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticateToken(t *testing.T) {
	srv := &Server{oidcVerifier: fakeVerifier("good-token")}

	// tokens without parseable claims still pass, the email is informational
	email, subject, err := srv.authenticateToken(context.Background(), "good-token")
	assert.NoError(t, err)
	assert.Empty(t, email)
	assert.Equal(t, "user-1", subject)

	_, _, err = srv.authenticateToken(context.Background(), "wrong-token")
	assert.Error(t, err)
}
