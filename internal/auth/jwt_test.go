package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func protected(t *testing.T) http.Handler {
	return JWTMiddleware(secret, "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		claims, err := GetClaimsFromContext(r.Context())
		require.NoError(t, err)
		w.Write([]byte(claims.UserID))
	}))
}

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(secret, "contable-01", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "contable-01", claims.UserID)
	assert.Equal(t, Issuer, claims.Issuer)

	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateToken("", "x", time.Hour)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken(secret, "u", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMiddleware(t *testing.T) {
	h := protected(t)
	token, err := GenerateToken(secret, "contable-01", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"public path", "/health", "", http.StatusOK},
		{"no header", "/extract", "", http.StatusUnauthorized},
		{"wrong scheme", "/extract", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "/extract", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "/extract", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized`)
			}
		})
	}
}

func TestGetClaimsFromContextEmpty(t *testing.T) {
	_, err := GetClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.ErrorIs(t, err, ErrNoClaims)
}
