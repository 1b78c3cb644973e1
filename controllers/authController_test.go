package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"civiclens-be/models"
	"civiclens-be/repository"
	"civiclens-be/services"
	"civiclens-be/utils"

	"github.com/gin-gonic/gin"
)

type mockProvider struct {
	fetchProfileFunc func(ctx context.Context, code string) (*services.FederatedProfile, error)
}

func (m *mockProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (m *mockProvider) FetchProfile(ctx context.Context, code string) (*services.FederatedProfile, error) {
	return m.fetchProfileFunc(ctx, code)
}

func setupAuthRouter(t *testing.T, provider services.FederatedProvider) (*gin.Engine, *repository.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	states, err := utils.NewTokenManager("state-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	store := repository.NewMemoryStore()
	providers := map[string]services.FederatedProvider{}
	if provider != nil {
		providers[googleProvider] = provider
	}
	auth := services.NewAuthService(store.Users, tokens, utils.NewStateCodec(states), services.OpenPromotion{}, providers)
	h := NewAuthController(auth, "http://front.test")

	router := gin.New()
	router.GET("/auth/google", h.GoogleStart)
	router.GET("/auth/google/callback", h.GoogleCallback)
	return router, store
}

func get(router *gin.Engine, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func nonceFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == nonceCookie {
			return cookie
		}
	}
	return nil
}

// startFlow begins a Google login and returns the signed state and the
// nonce cookie handed to the browser.
func startFlow(t *testing.T, router *gin.Engine, role string) (string, *http.Cookie) {
	t.Helper()
	w := get(router, "/auth/google?role="+role)
	if w.Code != http.StatusFound {
		t.Fatalf("start: expected 302, got %d", w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	cookie := nonceFrom(w)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("start should set the nonce cookie")
	}
	if !cookie.HttpOnly || cookie.Path != nonceCookiePath || cookie.MaxAge != nonceCookieAge {
		t.Errorf("unexpected nonce cookie: %+v", cookie)
	}
	return loc.Query().Get("state"), cookie
}

func TestGoogleCallbackLinksExistingLocalUser(t *testing.T) {
	provider := &mockProvider{fetchProfileFunc: func(_ context.Context, code string) (*services.FederatedProfile, error) {
		if code != "good-code" {
			return nil, errors.New("invalid grant")
		}
		return &services.FederatedProfile{ID: "g-123", DisplayName: "Asha", Emails: []string{"Asha@Example.com"}, PhotoURL: "https://img/a.png"}, nil
	}}
	router, store := setupAuthRouter(t, provider)
	ctx := context.Background()

	existing := &models.User{Name: "Asha", Email: "asha@example.com", Password: "secret1", Role: models.RoleCitizen, Provider: models.ProviderLocal}
	if err := existing.HashPassword(); err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := store.Users.Create(ctx, existing); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	state, cookie := startFlow(t, router, "")
	w := get(router, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("callback: expected 302, got %d", w.Code)
	}
	if cleared := nonceFrom(w); cleared == nil || cleared.MaxAge >= 0 {
		t.Errorf("callback should clear the nonce cookie, got %+v", cleared)
	}

	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Host != "front.test" || loc.Path != "/auth/callback" {
		t.Errorf("unexpected redirect target: %s", loc)
	}
	if loc.Query().Get("token") == "" || loc.Query().Get("role") != "citizen" {
		t.Errorf("redirect should carry token and role: %s", loc.RawQuery)
	}

	linked, err := store.Users.FindByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if linked.GoogleID != "g-123" {
		t.Errorf("expected google id to be linked, got %q", linked.GoogleID)
	}
	if total, _ := store.Users.Count(ctx); total != 1 {
		t.Errorf("expected no duplicate user, got %d users", total)
	}
}

func TestGoogleCallbackAdminRequest(t *testing.T) {
	provider := &mockProvider{fetchProfileFunc: func(context.Context, string) (*services.FederatedProfile, error) {
		return &services.FederatedProfile{ID: "g-9", Emails: []string{"new@example.com"}}, nil
	}}
	router, _ := setupAuthRouter(t, provider)

	state, cookie := startFlow(t, router, "admin")
	w := get(router, "/auth/google/callback?code=c&state="+url.QueryEscape(state), cookie)

	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Query().Get("role") != "admin" {
		t.Errorf("expected admin role under open promotion, got %s", loc.RawQuery)
	}
}

func TestGoogleCallbackFailuresRedirectToLogin(t *testing.T) {
	provider := &mockProvider{fetchProfileFunc: func(context.Context, string) (*services.FederatedProfile, error) {
		return nil, errors.New("invalid grant")
	}}
	router, _ := setupAuthRouter(t, provider)
	state, cookie := startFlow(t, router, "")

	for name, target := range map[string]string{
		"exchange failure": "/auth/google/callback?code=bad&state=" + url.QueryEscape(state),
		"tampered state":   "/auth/google/callback?code=c&state=forged",
		"missing code":     "/auth/google/callback?state=" + url.QueryEscape(state),
		"provider error":   "/auth/google/callback?error=access_denied",
	} {
		t.Run(name, func(t *testing.T) {
			w := get(router, target, cookie)
			if w.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", w.Code)
			}
			if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, "/login?error=auth_failed") {
				t.Errorf("unexpected redirect: %s", loc)
			}
		})
	}
}

func TestGoogleCallbackRejectsStateFromAnotherBrowser(t *testing.T) {
	fetched := 0
	provider := &mockProvider{fetchProfileFunc: func(context.Context, string) (*services.FederatedProfile, error) {
		fetched++
		return &services.FederatedProfile{ID: "g-1", Emails: []string{"victim@example.com"}}, nil
	}}
	router, store := setupAuthRouter(t, provider)

	state, _ := startFlow(t, router, "")
	_, otherBrowser := startFlow(t, router, "")
	target := "/auth/google/callback?code=c&state=" + url.QueryEscape(state)

	for name, cookies := range map[string][]*http.Cookie{
		"no cookie":          nil,
		"another nonce":      {otherBrowser},
		"empty nonce cookie": {{Name: nonceCookie, Value: ""}},
	} {
		t.Run(name, func(t *testing.T) {
			w := get(router, target, cookies...)
			if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, "/login?error=auth_failed") {
				t.Errorf("expected login error redirect, got %d %s", w.Code, loc)
			}
		})
	}

	if fetched != 0 {
		t.Errorf("code must not be exchanged for a foreign state, exchanged %d times", fetched)
	}
	if total, _ := store.Users.Count(context.Background()); total != 0 {
		t.Errorf("expected no account to be created, got %d", total)
	}
}
