package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/callback"
	"codeberg.org/algopatterns/academy/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontend = "https://learn.example.com"

type fixture struct {
	router   *gin.Engine
	deps     *Deps
	profiles *profiles.Repository
}

func newFixture(t *testing.T, complete CompleteFunc) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })

	repo := profiles.NewRepository(mem, "user_profiles")

	deps := &Deps{
		Profiles:        repo,
		Tokens:          auth.NewTokens("test-jwt-secret"),
		Sessions:        sessions.NewCookieStore([]byte("test-session-secret")),
		Providers:       []string{auth.ProviderGitHub, auth.ProviderGoogle},
		FrontendURL:     frontend,
		CallbackTimeout: callback.DefaultTimeout,
		Complete:        complete,
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), deps)

	return &fixture{router: router, deps: deps, profiles: repo}
}

func (f *fixture) do(t *testing.T, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func googleUser(w http.ResponseWriter, r *http.Request) (goth.User, error) {
	http.SetCookie(w, &http.Cookie{Name: "_gothic_session", Value: "", MaxAge: -1})

	return goth.User{
		Provider: r.URL.Query().Get("provider"),
		UserID:   "123",
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
	}, nil
}

func TestCallback_SuccessRedirectsToModules(t *testing.T) {
	f := newFixture(t, googleUser)

	start := time.Now()
	rec := f.do(t, http.MethodGet, "/api/v1/auth/google/callback?code=abc&state=xyz")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+callback.PathHome, rec.Header().Get("Location"))
	assert.GreaterOrEqual(t, time.Since(start), callback.DefaultSuccessDelay)

	token := findCookie(rec, auth.TokenCookie)
	require.NotNil(t, token)
	assert.True(t, token.HttpOnly)

	claims, err := f.deps.Tokens.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "google:123", claims.UserID)

	require.NotNil(t, findCookie(rec, "_gothic_session"), "provider session cookies are replayed")

	profile, err := f.profiles.GetProfile(t.Context(), "google:123")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.DisplayName)
	assert.Equal(t, "ada@example.com", profile.Email)

	// the status message survives the redirect exactly once
	status := findCookie(rec, statusSession)
	require.NotNil(t, status)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/status", status)
	require.Equal(t, http.StatusOK, rec.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{callback.MessageSuccess}, body.Messages)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/status", findCookie(rec, statusSession))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Messages)
}

func TestCallback_ExistingProfileKeepsProgress(t *testing.T) {
	f := newFixture(t, googleUser)

	modules := 4
	_, err := f.profiles.CreateOrUpdate(t.Context(), "google:123", profiles.Patch{ModulesCompleted: &modules})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/google/callback")
	require.Equal(t, http.StatusFound, rec.Code)

	profile, err := f.profiles.GetProfile(t.Context(), "google:123")
	require.NoError(t, err)
	assert.Equal(t, 4, profile.ModulesCompleted)
	assert.Equal(t, "Ada Lovelace", profile.DisplayName)
}

func TestCallback_ProviderErrorRedirectsToLogin(t *testing.T) {
	f := newFixture(t, func(http.ResponseWriter, *http.Request) (goth.User, error) {
		return goth.User{}, errors.New("access_denied")
	})

	start := time.Now()
	rec := f.do(t, http.MethodGet, "/api/v1/auth/google/callback?error=access_denied")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+callback.PathLogin, rec.Header().Get("Location"))
	assert.GreaterOrEqual(t, time.Since(start), callback.DefaultFailureDelay)
	assert.Nil(t, findCookie(rec, auth.TokenCookie))
}

func TestCallback_TimeoutRedirectsToLogin(t *testing.T) {
	f := newFixture(t, func(_ http.ResponseWriter, r *http.Request) (goth.User, error) {
		<-r.Context().Done()
		return goth.User{}, r.Context().Err()
	})
	f.deps.CallbackTimeout = 50 * time.Millisecond

	rec := f.do(t, http.MethodGet, "/api/v1/auth/github/callback")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+callback.PathLogin, rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, auth.TokenCookie))

	rec = f.do(t, http.MethodGet, "/api/v1/auth/status", findCookie(rec, statusSession))

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{callback.MessageTimedOut}, body.Messages)
}

func TestCallback_TimeoutWithoutContextSupport(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) (goth.User, error) {
		<-release
		return googleUser(w, r)
	})
	f.deps.CallbackTimeout = 50 * time.Millisecond

	start := time.Now()
	rec := f.do(t, http.MethodGet, "/api/v1/auth/google/callback")
	elapsed := time.Since(start)
	close(release)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+callback.PathLogin, rec.Header().Get("Location"))
	assert.Less(t, elapsed, time.Second, "redirect must not wait for the exchange")
	assert.Nil(t, findCookie(rec, auth.TokenCookie))
	assert.Nil(t, findCookie(rec, "_gothic_session"), "late provider cookies are dropped")

	status := f.do(t, http.MethodGet, "/api/v1/auth/status", findCookie(rec, statusSession))

	var body StatusResponse
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &body))
	assert.Equal(t, []string{callback.MessageTimedOut}, body.Messages)

	// the exchange finishing after the redirect must not create the profile
	assert.Never(t, func() bool {
		_, err := f.profiles.GetProfile(context.Background(), "google:123")
		return err == nil
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestCallback_UnknownProvider(t *testing.T) {
	f := newFixture(t, googleUser)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/myspace/callback")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/myspace")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t, googleUser)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := f.deps.Tokens.Generate("google:123", "ada@example.com")
	require.NoError(t, err)
	cookie := &http.Cookie{Name: auth.TokenCookie, Value: token}

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	name := "Ada"
	_, err = f.profiles.CreateOrUpdate(t.Context(), "google:123", profiles.Patch{DisplayName: &name})
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "google:123", body.User.ID)
	assert.Equal(t, "Ada", body.User.DisplayName)
}

func TestLogout_ClearsTokenCookie(t *testing.T) {
	f := newFixture(t, googleUser)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/logout")
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(rec, auth.TokenCookie)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestStatus_EmptyWithoutSession(t *testing.T) {
	f := newFixture(t, googleUser)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}
