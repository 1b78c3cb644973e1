package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func TestGoogleProviderAuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-id", "secret", "http://localhost:8080/auth/google/callback")

	raw := p.AuthCodeURL("state-value")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-value" || q.Get("client_id") != "client-id" {
		t.Errorf("unexpected query: %v", q)
	}
	if q.Get("scope") != "profile email" {
		t.Errorf("unexpected scopes: %q", q.Get("scope"))
	}
}

func TestGoogleProviderFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1234","email":"ravi@example.com","name":"Ravi","picture":"https://img/r.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider("client-id", "secret", "http://localhost/cb")
	p.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	p.userInfoURL = srv.URL + "/userinfo"

	profile, err := p.FetchProfile(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.ID != "1234" || profile.DisplayName != "Ravi" || profile.PhotoURL != "https://img/r.png" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if len(profile.Emails) != 1 || profile.Emails[0] != "ravi@example.com" {
		t.Errorf("unexpected emails: %v", profile.Emails)
	}

	if _, err := p.FetchProfile(context.Background(), "wrong"); err == nil {
		t.Error("expected exchange failure")
	}
}
