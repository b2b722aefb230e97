package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authCapture() (http.Handler, *Claims) {
	seen := &Claims{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Subject = GetUserID(r.Context())
		seen.DisplayName = GetUserName(r.Context())
		seen.WorkspaceID = GetWorkspaceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testSecret)(h), seen
}

func TestAuthValidToken(t *testing.T) {
	handler, seen := authCapture()

	token := signToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		WorkspaceID: "ws1",
		DisplayName: "Alice",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", seen.Subject)
	assert.Equal(t, "Alice", seen.DisplayName)
	assert.Equal(t, "ws1", seen.WorkspaceID)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	handler, _ := authCapture()

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc123",
		"garbage token":  "Bearer not.a.token",
		"wrong secret": "Bearer " + signToken(t, "other-secret", &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}),
		"expired": "Bearer " + signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestValidateMessageBody(t *testing.T) {
	assert.NoError(t, ValidateMessageBody("hello"))
	assert.Error(t, ValidateMessageBody(""))
	assert.Error(t, ValidateMessageBody(string([]byte{0xff, 0xfe})))
}

func TestValidateChannelName(t *testing.T) {
	assert.NoError(t, ValidateChannelName("General Chat"))
	assert.Error(t, ValidateChannelName(""))
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("when is the deploy?"))
	assert.Error(t, ValidateQuery(""))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("018f4e8a-1111-7000-8000-000000000000"))
	assert.Error(t, ValidateID(""))
	assert.Error(t, ValidateID("not-a-uuid"))
}

func TestValidateWorkspaceID(t *testing.T) {
	assert.NoError(t, ValidateWorkspaceID("acmecorp"))
	assert.Error(t, ValidateWorkspaceID(""))
	assert.Error(t, ValidateWorkspaceID(strings.Repeat("w", 65)))
}
