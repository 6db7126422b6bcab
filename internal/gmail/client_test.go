package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// newTestClient builds a Client whose API calls land on the given handler.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &Client{svc: svc.Users, account: "test"}
}

func TestSearchMessagesHydratesHeaders(t *testing.T) {
	// The list endpoint serves only IDs; headers must come from the
	// per-message metadata fetch.
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"id":"m1","threadId":"t1"},{"id":"m2","threadId":"t2"}],"resultSizeEstimate":2}`)
	})
	gets := 0
	metadataMessage := func(w http.ResponseWriter, r *http.Request, id, from, subject string) {
		gets++
		if got := r.URL.Query().Get("format"); got != "metadata" {
			t.Errorf("message %s fetched with format %q, want metadata", id, got)
		}
		fmt.Fprintf(w, `{"id":%q,"threadId":"t1","payload":{"headers":[{"name":"From","value":%q},{"name":"Subject","value":%q}]}}`,
			id, from, subject)
	}
	mux.HandleFunc("/gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		metadataMessage(w, r, "m1", "alice@example.com", "first")
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/m2", func(w http.ResponseWriter, r *http.Request) {
		metadataMessage(w, r, "m2", "bob@example.com", "second")
	})

	c := newTestClient(t, mux)
	msgs, err := c.SearchMessages("is:unread", 10)
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if gets != 2 {
		t.Errorf("metadata fetches = %d, want 2", gets)
	}
	if got := HeaderValue(msgs[0], "From"); got != "alice@example.com" {
		t.Errorf("From = %q", got)
	}
	if got := HeaderValue(msgs[0], "Subject"); got != "first" {
		t.Errorf("Subject = %q", got)
	}
	if got := HeaderValue(msgs[1], "From"); got != "bob@example.com" {
		t.Errorf("From = %q", got)
	}
}

func TestSearchMessagesNoHits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultSizeEstimate":0}`)
	})

	c := newTestClient(t, mux)
	msgs, err := c.SearchMessages("from:nobody", 10)
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "a@example.com"},
				{Name: "Subject", Value: "Hello"},
			},
		},
	}

	if got := HeaderValue(msg, "From"); got != "a@example.com" {
		t.Errorf("From = %q", got)
	}
	if got := HeaderValue(msg, "Message-ID"); got != "" {
		t.Errorf("absent header should yield empty string, got %q", got)
	}
	if got := HeaderValue(nil, "From"); got != "" {
		t.Errorf("nil message should yield empty string, got %q", got)
	}
	if got := HeaderValue(&gmail.Message{}, "From"); got != "" {
		t.Errorf("nil payload should yield empty string, got %q", got)
	}
}

func TestDecodeBody(t *testing.T) {
	// Gmail normally hands out base64url data.
	urlEncoded := base64.URLEncoding.EncodeToString([]byte("hello?>world"))
	got, err := decodeBody(urlEncoded)
	if err != nil || got != "hello?>world" {
		t.Errorf("decodeBody(url) = %q, %v", got, err)
	}

	// Some senders produce standard base64; the decoder falls back.
	stdEncoded := base64.StdEncoding.EncodeToString([]byte("hello?>world"))
	got, err = decodeBody(stdEncoded)
	if err != nil || got != "hello?>world" {
		t.Errorf("decodeBody(std) = %q, %v", got, err)
	}

	if _, err := decodeBody("!!! not base64 !!!"); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestWalkParts(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain"},
			{
				MimeType: "multipart/related",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html"},
				},
			},
		},
	}

	var seen []string
	walkParts(root, func(p *gmail.MessagePart) {
		seen = append(seen, p.MimeType)
	})

	want := []string{"multipart/alternative", "text/plain", "multipart/related", "text/html"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visit order %v, want %v", seen, want)
			break
		}
	}

	walkParts(nil, func(p *gmail.MessagePart) {
		t.Error("nil part must not be visited")
	})
}
