package auth

// DefaultOAuthScopes are the Google OAuth scopes requested for every managed
// account. The same scope set is shared by all accounts because the
// application keys are process-wide.
//
// The scopes provide access to:
//   - Gmail: read, modify, send (gmail.modify covers all three)
//   - Gmail settings: filters and send-as configuration
//   - User identity: email address discovery after authorization
var DefaultOAuthScopes = []string{
	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.settings.basic",

	// Identity scopes (required for identity lookup after authorization)
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}
