package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/mailfold/internal/auth"
)

// Client wraps the Gmail Users service for a single account.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account identifier this client is bound to.
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Gmail client from an authenticated account handle.
func NewClient(ctx context.Context, authClient *auth.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(authClient.HTTPClient()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{
		svc:     svc.Users,
		account: authClient.AccountID(),
	}, nil
}

// Profile returns the mailbox profile (email address, message totals).
func (c *Client) Profile() (*gmail.Profile, error) {
	profile, err := c.svc.GetProfile("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get mailbox profile: %w", err)
	}
	return profile, nil
}

// ListMessages lists message IDs matching the query with pagination,
// fetching up to maxResults messages across multiple API calls.
func (c *Client) ListMessages(q string, maxResults int64) ([]*gmail.Message, error) {
	var all []*gmail.Message
	pageToken := ""

	for {
		remaining := maxResults - int64(len(all))
		if remaining <= 0 {
			break
		}

		// Gmail caps the page size at 100.
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(q).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		all = append(all, res.Messages...)
		if res.NextPageToken == "" || int64(len(all)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(all)) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

// SearchMessages lists messages matching the query and hydrates each hit
// with its From, Subject and Date headers. The list endpoint returns only
// message and thread IDs, so every hit needs a metadata fetch before its
// headers can be read.
func (c *Client) SearchMessages(q string, maxResults int64) ([]*gmail.Message, error) {
	listed, err := c.ListMessages(q, maxResults)
	if err != nil {
		return nil, err
	}

	out := make([]*gmail.Message, 0, len(listed))
	for _, m := range listed {
		msg, err := c.svc.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(messageID string) error {
	_, err := c.svc.Messages.Trash("me", messageID).Do()
	return err
}

// HeaderValue returns the value of a message header, or "" if absent.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == header {
			return h.Value
		}
	}
	return ""
}

// GetMessageBody extracts the text or HTML body from a message.
// Format is "text" or "html".
func (c *Client) GetMessageBody(messageID, format string) (string, error) {
	if format == "" {
		format = "text"
	}

	var targetMimeType string
	switch format {
	case "text":
		targetMimeType = "text/plain"
	case "html":
		targetMimeType = "text/html"
	default:
		return "", fmt.Errorf("invalid format %s, must be 'text' or 'html'", format)
	}

	msg, err := c.GetMessage(messageID)
	if err != nil {
		return "", err
	}

	var body string
	if msg.Payload != nil {
		if msg.Payload.MimeType == targetMimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
			body = msg.Payload.Body.Data
		} else {
			walkParts(msg.Payload, func(part *gmail.MessagePart) {
				if body == "" && part.MimeType == targetMimeType && part.Body != nil && part.Body.Data != "" {
					body = part.Body.Data
				}
			})
		}
	}

	if body == "" {
		return "", fmt.Errorf("no %s body found in message", format)
	}

	return decodeBody(body)
}

// decodeBody decodes Gmail's base64url body data, falling back to standard
// base64 for payloads produced by non-conforming senders.
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
