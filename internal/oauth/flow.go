package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/browser"
	"github.com/google/uuid"

	"github.com/skillauth/cli/internal/auth"
	"github.com/skillauth/cli/internal/config"
)

// DefaultAuthorizeTimeout bounds how long the flow waits for the browser
// redirect before giving up.
const DefaultAuthorizeTimeout = 120 * time.Second

// ErrAuthorizationTimeout means the user did not complete the browser flow in
// time. Re-running the command retries the whole flow.
var ErrAuthorizationTimeout = errors.New("authorization timed out")

const successPage = `<html><body style="font-family: system-ui; text-align: center; padding: 50px;">
<h1>Authentication Successful</h1>
<p>You can close this window and return to the terminal.</p>
</body></html>`

const errorPage = `<html><body style="font-family: system-ui; text-align: center; padding: 50px;">
<h1>Authentication Failed</h1>
<p>%s</p>
</body></html>`

// Flow drives the one-time browser authorization: a loopback callback
// listener on an ephemeral port, the provider's consent screen, and the
// code-for-token exchange.
type Flow struct {
	Client *Client
	// OpenBrowser launches the user's browser; overridable in tests.
	OpenBrowser func(url string) error
	Timeout     time.Duration
	// Out receives the fallback URL and progress lines, normally stderr so
	// stdout stays a single JSON object.
	Out io.Writer
}

// NewFlow creates a Flow with the default browser launcher and timeout.
func NewFlow(client *Client, out io.Writer) *Flow {
	return &Flow{
		Client:      client,
		OpenBrowser: browser.OpenURL,
		Timeout:     DefaultAuthorizeTimeout,
		Out:         out,
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the browser flow for an OAuth provider and returns the
// resulting secret with its expiry. The callback listener is torn down on
// every exit path. Storing the record is the caller's job.
func (f *Flow) Authorize(ctx context.Context, p config.Provider) (auth.Secret, time.Time, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return auth.Secret{}, time.Time{}, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", port)
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		w.Header().Set("Content-Type", "text/html")

		switch {
		case query.Get("state") != state:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorPage, "State mismatch. Re-run the login command.")
			results <- callbackResult{err: fmt.Errorf("authorization state mismatch")}
		case query.Get("error") != "":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorPage, query.Get("error"))
			results <- callbackResult{err: fmt.Errorf("provider denied authorization: %s", query.Get("error"))}
		case query.Get("code") == "":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorPage, "Missing authorization code.")
			results <- callbackResult{err: fmt.Errorf("callback carried no authorization code")}
		default:
			fmt.Fprint(w, successPage)
			results <- callbackResult{code: query.Get("code")}
		}
	})

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := buildAuthURL(p, redirectURI, state)
	fmt.Fprintf(f.Out, "Opening browser for %s authorization...\n", p.Name)
	fmt.Fprintf(f.Out, "If the browser does not open, visit:\n%s\n", authURL)
	if err := f.OpenBrowser(authURL); err != nil {
		fmt.Fprintf(f.Out, "Could not launch browser (%v); use the URL above.\n", err)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthorizeTimeout
	}

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return auth.Secret{}, time.Time{}, res.err
		}
		code = res.code
	case <-ctx.Done():
		return auth.Secret{}, time.Time{}, ctx.Err()
	case <-time.After(timeout):
		return auth.Secret{}, time.Time{}, fmt.Errorf("%w after %s (re-run the command to retry)", ErrAuthorizationTimeout, timeout)
	}

	return f.Client.Exchange(ctx, p, code, redirectURI)
}

// buildAuthURL assembles the provider consent URL. access_type and prompt are
// Google's knobs for getting a refresh token; other providers ignore them.
func buildAuthURL(p config.Provider, redirectURI, state string) string {
	params := url.Values{
		"client_id":     {p.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	if len(p.Scopes) > 0 {
		params.Set("scope", strings.Join(p.Scopes, " "))
	}
	return p.AuthURL + "?" + params.Encode()
}
