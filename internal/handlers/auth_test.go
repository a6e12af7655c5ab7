package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter22",
		"name":     "Ada",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "Ada", user["name"])

	// Duplicate email is rejected.
	status, _ = env.request(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"password": "other",
		"name":     "Ada Again",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Login with the right password.
	status, body = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["access_token"].(string)

	// Wrong password and unknown email.
	status, _ = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Me reflects the bearer.
	status, body = env.request(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "Ada", body["name"])
	assert.NotEmpty(t, body["id"])
}

func TestConcurrentDuplicateRegistrations(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 4
	codes := env.storm(t, attempts, func(i int) *http.Request {
		body, err := json.Marshal(map[string]string{
			"email":    "race@example.com",
			"password": "pw123456",
			"name":     "Racer",
		})
		require.NoError(t, err)
		req, err := http.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		return req
	})

	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			created++
		case http.StatusBadRequest:
			rejected++
		default:
			t.Fatalf("unexpected status %d for duplicate registration", code)
		}
	}
	assert.Equal(t, 1, created, "exactly one registration wins")
	assert.Equal(t, attempts-1, rejected)
}

func TestTestLoginProvisionsFreshGuests(t *testing.T) {
	env := newTestEnv(t)

	status, first := env.request(t, "POST", "/api/auth/test-login", "", nil)
	require.Equal(t, http.StatusOK, status)
	status, second := env.request(t, "POST", "/api/auth/test-login", "", nil)
	require.Equal(t, http.StatusOK, status)

	u1 := first["user"].(map[string]interface{})
	u2 := second["user"].(map[string]interface{})
	assert.NotEqual(t, u1["id"], u2["id"], "each test-login must create a new user")
	assert.NotEqual(t, u1["email"], u2["email"])

	// Guest accounts cannot be logged into with a password.
	status, _ = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    u1["email"].(string),
		"password": "",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenCarriesSubAndUserID(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.NotEmpty(t, claims.UserID)
	assert.Equal(t, claims.UserID, claims.Subject)
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	protected := []struct {
		method string
		path   string
	}{
		{"GET", "/api/auth/me"},
		{"GET", "/api/agents"},
		{"GET", "/api/saved-agents"},
		{"GET", "/api/simulation/state"},
		{"GET", "/api/conversations"},
		{"GET", "/api/observer/messages"},
		{"POST", "/api/conversation/generate"},
		{"POST", "/api/simulation/reset"},
	}
	for _, ep := range protected {
		status, _ := env.rawRequest(t, ep.method, ep.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s without token", ep.method, ep.path)

		status, _ = env.rawRequest(t, ep.method, ep.path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s with garbage token", ep.method, ep.path)
	}
}
