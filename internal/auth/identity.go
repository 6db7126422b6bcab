package auth

import (
	"context"

	gmailapi "google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/teemow/mailfold/internal/instrumentation"
	"github.com/teemow/mailfold/internal/logging"
)

// UnknownEmail is the sentinel recorded when identity lookup fails through
// both endpoints. Registration never hard-fails solely because the email
// address could not be discovered.
const UnknownEmail = "unknown@unknown.com"

// LookupIdentity discovers the email address behind an authenticated client.
// It asks the userinfo endpoint first and falls back to the Gmail mailbox
// profile; when both fail it returns UnknownEmail.
func (m *Manager) LookupIdentity(ctx context.Context, client *Client) string {
	opts := []option.ClientOption{option.WithHTTPClient(client.HTTPClient())}
	if m.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(m.userinfoEndpoint))
	}

	if svc, err := oauth2api.NewService(ctx, opts...); err == nil {
		if info, err := svc.Userinfo.Get().Context(ctx).Do(); err == nil && info.Email != "" {
			m.recorder().RecordIdentityLookup(ctx, instrumentation.ResultSuccess)
			return info.Email
		} else {
			m.logger.Debug("userinfo identity lookup failed, trying mailbox profile",
				logging.Account(client.AccountID()), logging.Err(err))
		}
	}

	gopts := []option.ClientOption{option.WithHTTPClient(client.HTTPClient())}
	if m.gmailEndpoint != "" {
		gopts = append(gopts, option.WithEndpoint(m.gmailEndpoint))
	}

	if svc, err := gmailapi.NewService(ctx, gopts...); err == nil {
		if profile, err := svc.Users.GetProfile("me").Context(ctx).Do(); err == nil && profile.EmailAddress != "" {
			m.recorder().RecordIdentityLookup(ctx, instrumentation.ResultFallback)
			return profile.EmailAddress
		}
	}

	m.logger.Warn("identity lookup failed, recording sentinel address",
		logging.Account(client.AccountID()))
	m.recorder().RecordIdentityLookup(ctx, instrumentation.ResultError)
	return UnknownEmail
}
