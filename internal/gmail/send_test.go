package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeRFC2047(t *testing.T) {
	if got := encodeRFC2047("plain ascii subject"); got != "plain ascii subject" {
		t.Errorf("ascii subject should pass through, got %q", got)
	}

	got := encodeRFC2047("Grüße aus Köln")
	if !strings.HasPrefix(got, "=?UTF-8?") {
		t.Errorf("non-ascii subject should be MIME encoded, got %q", got)
	}
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not base64url: %v", err)
	}
	return string(decoded)
}

func TestBuildRaw(t *testing.T) {
	raw := buildRaw(&EmailMessage{
		To:      []string{"a@example.com", "b@example.com"},
		Cc:      []string{"c@example.com"},
		Subject: "Hello",
		Body:    "body text",
	})
	msg := decodeRaw(t, raw)

	for _, want := range []string{
		"To: a@example.com, b@example.com\r\n",
		"Cc: c@example.com\r\n",
		"Subject: Hello\r\n",
		`Content-Type: text/plain; charset="UTF-8"` + "\r\n",
		"MIME-Version: 1.0\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing header %q in:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody text") {
		t.Errorf("body not separated by blank line:\n%s", msg)
	}
	// No Bcc was given, so no Bcc header may appear.
	if strings.Contains(msg, "Bcc:") {
		t.Errorf("empty Bcc should be omitted:\n%s", msg)
	}
}

func TestBuildRawHTML(t *testing.T) {
	raw := buildRaw(&EmailMessage{
		To:      []string{"a@example.com"},
		Subject: "Hi",
		Body:    "<p>hi</p>",
		IsHTML:  true,
	})
	msg := decodeRaw(t, raw)

	if !strings.Contains(msg, `Content-Type: text/html; charset="UTF-8"`) {
		t.Errorf("HTML message should carry text/html content type:\n%s", msg)
	}
}

func TestBuildRawThreading(t *testing.T) {
	raw := buildRaw(&EmailMessage{
		To:         []string{"a@example.com"},
		Subject:    "Re: Hi",
		Body:       "reply",
		InReplyTo:  "<orig@mail>",
		References: "<first@mail> <orig@mail>",
	})
	msg := decodeRaw(t, raw)

	if !strings.Contains(msg, "In-Reply-To: <orig@mail>\r\n") {
		t.Errorf("missing In-Reply-To header:\n%s", msg)
	}
	if !strings.Contains(msg, "References: <first@mail> <orig@mail>\r\n") {
		t.Errorf("missing References header:\n%s", msg)
	}
}
