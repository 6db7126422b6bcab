package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/mailfold/internal/auth"
	"github.com/teemow/mailfold/internal/logging"
)

// callbackTimeout is how long the auth command waits for the browser
// redirect before giving up.
const callbackTimeout = 5 * time.Minute

func newAuthCmd() *cobra.Command {
	var (
		accountID string
		name      string
		tag       string
		code      string
		keysPath  string
		debugMode bool
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate a Google account",
		Long: `Authenticate a Google account and store its credentials locally.

By default this starts a temporary local callback server, prints the
Google authorization URL, and completes the flow automatically once you
approve access in the browser. If the browser cannot reach this machine,
run with --code to paste the authorization code manually.

The account ID is a short local identifier (e.g. 'work'); the first
account you add becomes the default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Setup(debugMode)

			if keysPath == "" {
				keysPath = auth.KeysPath()
			}
			keys, err := auth.LoadKeys(keysPath)
			if err != nil {
				return err
			}
			manager := auth.NewManagerFromKeys(keys, logger)

			if accountID == "" {
				return fmt.Errorf("--account is required")
			}

			if code != "" {
				return completeManualAuth(cmd.Context(), manager, accountID, name, tag, code)
			}
			return runCallbackAuth(cmd.Context(), manager, accountID, name, tag)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Local identifier for the account (e.g. 'work', 'personal')")
	cmd.Flags().StringVar(&name, "name", "", "Display name for the account")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag for grouping accounts (e.g. 'work')")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code for manual completion (skips the callback server)")
	cmd.Flags().StringVar(&keysPath, "keys", "", "Path to the Google Cloud OAuth keys file. Can also use MAILFOLD_OAUTH_KEYS env var.")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func completeManualAuth(ctx context.Context, manager *auth.Manager, accountID, name, tag, code string) error {
	email, err := manager.CompleteAuth(ctx, accountID, name, tag, code, auth.DefaultRedirectURI)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Printf("Account %s authenticated as %s\n", accountID, email)
	return nil
}

// callbackResult carries the outcome of the browser redirect.
type callbackResult struct {
	code string
	err  error
}

func runCallbackAuth(ctx context.Context, manager *auth.Manager, accountID, name, tag string) error {
	redirectURL, err := url.Parse(auth.DefaultRedirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect URI: %w", err)
	}

	listener, err := net.Listen("tcp", redirectURL.Host)
	if err != nil {
		return fmt.Errorf("failed to start callback server on %s: %w (is another auth flow running?)", redirectURL.Host, err)
	}

	state := uuid.NewString()
	resultChan := make(chan callbackResult, 1)

	var once sync.Once
	deliver := func(r callbackResult) {
		once.Do(func() { resultChan <- r })
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirectURL.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			deliver(callbackResult{err: fmt.Errorf("state mismatch in OAuth callback")})
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", errParam)})
			http.Error(w, "Authorization denied", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			deliver(callbackResult{err: fmt.Errorf("no authorization code in callback")})
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Authentication complete</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 80px;">
<h2>Authentication complete</h2>
<p>You can close this window and return to the terminal.</p>
</body></html>`)

		deliver(callbackResult{code: code})
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			deliver(callbackResult{err: fmt.Errorf("callback server error: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := manager.AuthURL(state, auth.DefaultRedirectURI)
	fmt.Println("Visit this URL in your browser to authorize access:")
	fmt.Printf("\n  %s\n\n", authURL)
	fmt.Println("Waiting for the browser redirect...")

	select {
	case result := <-resultChan:
		if result.err != nil {
			return result.err
		}
		return completeManualAuth(ctx, manager, accountID, name, tag, result.code)
	case <-time.After(callbackTimeout):
		return fmt.Errorf("timed out waiting for OAuth callback after %s", callbackTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
