package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	applog "possales/internal/log"
)

// DefaultCallbackTimeout bounds how long WaitForCode keeps its listener open.
const DefaultCallbackTimeout = 5 * time.Minute

// Flow runs one authorization-code handshake.
type Flow struct {
	cfg     Config
	oauth   *oauth2.Config
	state   string
	timeout time.Duration
	logger  *applog.Logger
}

// NewFlow validates cfg and prepares a handshake with a random state value.
func NewFlow(cfg Config, logger *applog.Logger) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentAuth)
	}
	return &Flow{
		cfg:     cfg,
		oauth:   cfg.OAuth2(),
		state:   state,
		timeout: DefaultCallbackTimeout,
		logger:  logger,
	}, nil
}

// State returns the anti-forgery value embedded in the authorize URL.
func (f *Flow) State() string { return f.state }

// SetTimeout overrides the callback timeout.
func (f *Flow) SetTimeout(d time.Duration) {
	if d > 0 {
		f.timeout = d
	}
}

// AuthCodeURL returns the URL the user must open to grant access.
func (f *Flow) AuthCodeURL() string {
	return f.oauth.AuthCodeURL(f.state, oauth2.AccessTypeOffline)
}

type callbackResult struct {
	code string
	err  error
}

// WaitForCode listens on the redirect URL's host and path for exactly one
// callback and returns its authorization code. The listener is closed before
// returning, whatever the outcome.
func (f *Flow) WaitForCode(ctx context.Context) (string, error) {
	u, err := url.Parse(f.cfg.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", u.Host, err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		// A root handler also sees stray requests such as /favicon.ico.
		if path == "/" && q.Get("code") == "" && q.Get("error") == "" && q.Get("state") == "" {
			http.NotFound(w, r)
			return
		}
		res := f.readCallback(q)
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization received. You may close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.logger.InfoContext(ctx, "Waiting for OAuth callback", "address", u.Host, "path", path)

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()
	select {
	case res := <-results:
		return res.code, res.err
	case <-timer.C:
		return "", errors.New("authorization timed out")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (f *Flow) readCallback(q url.Values) callbackResult {
	if e := q.Get("error"); e != "" {
		return callbackResult{err: fmt.Errorf("authorization denied: %s", e)}
	}
	if q.Get("state") != f.state {
		return callbackResult{err: errors.New("state mismatch")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("missing authorization code")}
	}
	return callbackResult{code: code}
}

// Exchange trades an authorization code for a token.
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return tok, nil
}

// Run performs the full handshake: print the URL, wait, exchange and save.
func (f *Flow) Run(ctx context.Context, prompt func(authURL string)) (*oauth2.Token, error) {
	if prompt != nil {
		prompt(f.AuthCodeURL())
	}
	code, err := f.WaitForCode(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := f.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := SaveToken(f.cfg.tokenFile(), tok); err != nil {
		return nil, err
	}
	f.logger.InfoContext(ctx, "Saved token", "path", f.cfg.tokenFile())
	return tok, nil
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("save token: nil token")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
