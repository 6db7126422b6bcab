package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLookupIdentity_Userinfo(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	userinfo := jsonServer(t, http.StatusOK, `{"email": "me@example.com"}`)
	m.userinfoEndpoint = userinfo.URL

	client := m.newClient(ctx, "work", testCreds())
	if got := m.LookupIdentity(ctx, client); got != "me@example.com" {
		t.Errorf("LookupIdentity = %q, want me@example.com", got)
	}
}

func TestLookupIdentity_MailboxFallback(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	userinfo := jsonServer(t, http.StatusInternalServerError, `{}`)
	profile := jsonServer(t, http.StatusOK, `{"emailAddress": "box@example.com"}`)
	m.userinfoEndpoint = userinfo.URL
	m.gmailEndpoint = profile.URL

	client := m.newClient(ctx, "work", testCreds())
	if got := m.LookupIdentity(ctx, client); got != "box@example.com" {
		t.Errorf("LookupIdentity = %q, want box@example.com", got)
	}
}

func TestLookupIdentity_Sentinel(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	broken := jsonServer(t, http.StatusInternalServerError, `{}`)
	m.userinfoEndpoint = broken.URL
	m.gmailEndpoint = broken.URL

	client := m.newClient(ctx, "work", testCreds())
	if got := m.LookupIdentity(ctx, client); got != UnknownEmail {
		t.Errorf("LookupIdentity = %q, want %q", got, UnknownEmail)
	}
}
