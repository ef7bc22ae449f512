package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// Credential failure kinds.
const (
	KindAbsent       = "absent"
	KindMalformed    = "malformed"
	KindMissingField = "missing_field"
)

var ErrCredential = errors.New("credential unavailable")

// CredentialError reports that no usable token is stored at Path.
type CredentialError struct {
	Path string
	Kind string
	Err  error
}

func (e *CredentialError) Error() string {
	msg := fmt.Sprintf("credential %s at %s", e.Kind, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Kind == KindAbsent {
		msg += " (run oauth-init first)"
	}
	return msg
}

func (e *CredentialError) Unwrap() error { return e.Err }

func (e *CredentialError) Is(target error) bool {
	return target == ErrCredential
}

// FileTokenSource reads the token file on every call. Refresh is not
// attempted; an expired token is served as is and rejected by the server.
type FileTokenSource struct {
	Path string
}

var _ oauth2.TokenSource = FileTokenSource{}

func (s FileTokenSource) Token() (*oauth2.Token, error) {
	return LoadToken(s.Path)
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &CredentialError{Path: path, Kind: KindAbsent}
	}
	if err != nil {
		return nil, &CredentialError{Path: path, Kind: KindAbsent, Err: err}
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, &CredentialError{Path: path, Kind: KindMalformed, Err: err}
	}
	if tok.AccessToken == "" {
		return nil, &CredentialError{Path: path, Kind: KindMissingField, Err: errors.New("access_token is empty")}
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	return &tok, nil
}

// NewHTTPClient returns a client that attaches the stored bearer token to
// every request.
func NewHTTPClient(ctx context.Context, src oauth2.TokenSource, timeout time.Duration) *http.Client {
	c := oauth2.NewClient(ctx, src)
	c.Timeout = timeout
	return c
}
