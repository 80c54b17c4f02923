package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea/internal/metrics"
	"github.com/berea-app/berea/internal/repository/memory"
	"github.com/berea-app/berea/internal/service"
)

const testSecret = "test-secret"

// newTestServer wires the full HTTP stack on the in-memory driver.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	store := memory.NewStore()
	repos := store.Repositories()

	users := service.NewUserService(repos.User, service.BootstrapIdentity{
		Username: "shepherd",
		Password: "130903",
	}, logger)
	sessions := service.NewSessionService(repos.Session, users, nil, 0, logger)
	verses := service.NewVerseService(repos.Verse, logger)
	devotionals := service.NewDevotionalService(repos.Devotional, logger)
	prayers := service.NewPrayerService(repos.Prayer, logger)

	m := metrics.New()
	router := NewRouter(RouterConfig{
		Auth: NewAuthHandler(AuthHandlerConfig{
			Sessions: sessions,
			Users:    users,
			Secret:   testSecret,
			Metrics:  m,
			Logger:   logger,
		}),
		Verses:         NewVerseHandler(verses, logger),
		Devotionals:    NewDevotionalHandler(devotionals, logger),
		Prayers:        NewPrayerHandler(prayers, logger),
		Health:         NewHealthHandler(store, logger),
		AuthMiddleware: NewAuthMiddleware(sessions, testSecret, m, logger),
		Metrics:        m,
		Logger:         logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any, cookies []*http.Cookie) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getWithCookies(t *testing.T, server *httptest.Server, path string, cookies []*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// TestAuthFlow walks the full credential lifecycle: register, failed
// login, successful login, authenticated read, logout, stale cookie.
func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "hunter2!"}

	// Register.
	resp := postJSON(t, server, "/api/register", creds, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "alice", body["username"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "passwordHash")

	// Registration implies login.
	regCookie := sessionCookie(t, resp)
	require.NotEmpty(t, regCookie.Value)

	// Wrong password.
	resp = postJSON(t, server, "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Unknown user gets the same 401 body as a wrong password.
	resp = postJSON(t, server, "/api/login", map[string]string{
		"username": "nobody", "password": "hunter2!",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	unknownBody := decodeBody(t, resp)

	resp = postJSON(t, server, "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, unknownBody, decodeBody(t, resp))

	// Correct login.
	resp = postJSON(t, server, "/api/login", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Greater(t, cookie.MaxAge, 23*3600)

	// Authenticated read.
	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "alice", body["username"])

	// Logout.
	resp = postJSON(t, server, "/api/logout", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := sessionCookie(t, resp)
	require.Less(t, cleared.MaxAge, 0)
	resp.Body.Close()

	// The old cookie no longer resolves.
	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestRegisterWithProfile checks that registration accepts initial
// profile fields and sets them on the new account.
func TestRegisterWithProfile(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/register", map[string]any{
		"username":      "alice",
		"password":      "hunter2!",
		"conversionAge": 17,
		"theme":         "dark",
		"language":      "pt-BR",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	body := decodeBody(t, resp)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, float64(17), body["conversionAge"])
	require.Equal(t, "dark", body["theme"])
	require.Equal(t, "pt-BR", body["language"])

	// The profile persists past the registration response.
	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, float64(17), body["conversionAge"])
	require.Equal(t, "dark", body["theme"])

	// Credentials-only registration still works.
	resp = postJSON(t, server, "/api/register", map[string]string{
		"username": "bob", "password": "hunter2!",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"reserved username", map[string]string{"username": "shepherd", "password": "hunter2!"}},
		{"short username", map[string]string{"username": "ab", "password": "hunter2!"}},
		{"short password", map[string]string{"username": "alice", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server, "/api/register", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}

	t.Run("duplicate username", func(t *testing.T) {
		creds := map[string]string{"username": "taken", "password": "hunter2!"}
		resp := postJSON(t, server, "/api/register", creds, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = postJSON(t, server, "/api/register", creds, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/register", "application/json", bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestBootstrapLogin(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/login", map[string]string{
		"username": "shepherd", "password": "130903",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	body := decodeBody(t, resp)
	require.Equal(t, "shepherd", body["username"])

	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	t.Run("wrong bootstrap password", func(t *testing.T) {
		resp := postJSON(t, server, "/api/login", map[string]string{
			"username": "shepherd", "password": "wrong",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := newTestServer(t)

	paths := []string{"/api/user", "/api/verses", "/api/devotionals", "/api/prayers"}
	for _, path := range paths {
		resp := getWithCookies(t, server, path, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}

	t.Run("tampered cookie", func(t *testing.T) {
		resp := getWithCookies(t, server, "/api/user", []*http.Cookie{{
			Name:  SessionCookieName,
			Value: "forged-token.deadbeef",
		}})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestUpdateProfile(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/register", map[string]string{
		"username": "alice", "password": "hunter2!",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	patch, err := json.Marshal(map[string]any{"theme": "dark", "conversionAge": 17})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPatch, server.URL+"/api/user", bytes.NewReader(patch))
	require.NoError(t, err)
	req.AddCookie(cookie)

	patchResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	body := decodeBody(t, patchResp)
	require.Equal(t, "dark", body["theme"])
	require.Equal(t, float64(17), body["conversionAge"])

	// Changes persist across reads.
	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "dark", body["theme"])
}

func TestHealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		resp := getWithCookies(t, server, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}

// TestAuthCounters drives the auth endpoints and checks that the outcome
// counters show up in the scrape with the expected values.
func TestAuthCounters(t *testing.T) {
	server := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "hunter2!"}

	resp := postJSON(t, server, "/api/register", creds, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server, "/api/login", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	resp = postJSON(t, server, "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// One resolved session, one request with no cookie at all.
	resp = getWithCookies(t, server, "/api/user", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = getWithCookies(t, server, "/api/user", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = getWithCookies(t, server, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scrape, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	body := string(scrape)
	require.Contains(t, body, `berea_auth_registrations_total{outcome="success"} 1`)
	require.Contains(t, body, `berea_auth_logins_total{outcome="success"} 1`)
	require.Contains(t, body, `berea_auth_logins_total{outcome="failure"} 1`)
	require.Contains(t, body, `berea_auth_session_resolutions_total{outcome="success"} 1`)
	require.Contains(t, body, `berea_auth_session_resolutions_total{outcome="failure"} 1`)
}
