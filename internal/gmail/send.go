package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool

	// Threading fields, set when replying.
	InReplyTo  string
	References string
	ThreadID   string
}

// encodeRFC2047 encodes a header value for non-ASCII characters.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// buildRaw assembles the RFC 2822 message and encodes it in the base64url
// form the Gmail API expects.
func buildRaw(msg *EmailMessage) string {
	var b strings.Builder

	writeHeader := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	writeHeader("To", strings.Join(msg.To, ", "))
	writeHeader("Cc", strings.Join(msg.Cc, ", "))
	writeHeader("Bcc", strings.Join(msg.Bcc, ", "))
	writeHeader("Subject", encodeRFC2047(msg.Subject))
	writeHeader("In-Reply-To", msg.InReplyTo)
	writeHeader("References", msg.References)

	if msg.IsHTML {
		writeHeader("Content-Type", `text/html; charset="UTF-8"`)
	} else {
		writeHeader("Content-Type", `text/plain; charset="UTF-8"`)
	}
	writeHeader("MIME-Version", "1.0")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// SendEmail sends an email through the Gmail API and returns the message ID.
func (c *Client) SendEmail(msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw:      buildRaw(msg),
		ThreadId: msg.ThreadID,
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// ReplyToEmail sends a reply to an existing message, preserving threading
// headers so mail clients keep the conversation together.
func (c *Client) ReplyToEmail(messageID, body string, cc, bcc []string, isHTML bool) (string, error) {
	if messageID == "" {
		return "", fmt.Errorf("messageID is required")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	original, err := c.GetMessage(messageID)
	if err != nil {
		return "", fmt.Errorf("failed to get original message: %w", err)
	}

	from := HeaderValue(original, "From")
	if from == "" {
		return "", fmt.Errorf("original message has no From header")
	}

	subject := HeaderValue(original, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	originalMessageID := HeaderValue(original, "Message-ID")
	references := HeaderValue(original, "References")
	if references != "" && originalMessageID != "" {
		references = references + " " + originalMessageID
	} else if originalMessageID != "" {
		references = originalMessageID
	}

	return c.SendEmail(&EmailMessage{
		To:         []string{from},
		Cc:         cc,
		Bcc:        bcc,
		Subject:    subject,
		Body:       body,
		IsHTML:     isHTML,
		InReplyTo:  originalMessageID,
		References: references,
		ThreadID:   original.ThreadId,
	})
}
