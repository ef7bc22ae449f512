// Package auth implements the Loyverse OAuth2 authorization-code handshake
// and serves the stored token to HTTP clients.
package auth

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL   = "https://api.loyverse.com/oauth/authorize"
	DefaultTokenURL  = "https://api.loyverse.com/oauth/token"
	DefaultTokenFile = "token.json"
)

// DefaultScopes grants read access to receipts and items.
var DefaultScopes = []string{"RECEIPTS_READ", "ITEMS_READ"}

// Config carries everything the handshake needs. It is filled from
// application configuration by the caller.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	TokenFile    string
}

// Validate checks the fields required to start a handshake.
func (c Config) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}
	if c.RedirectURL == "" {
		errs = append(errs, errors.New("redirect url is required"))
	} else if u, err := url.Parse(c.RedirectURL); err != nil || u.Host == "" {
		errs = append(errs, errors.New("redirect url must be absolute"))
	}
	return errors.Join(errs...)
}

// OAuth2 builds the oauth2 configuration, filling endpoint and scope defaults.
func (c Config) OAuth2() *oauth2.Config {
	authURL, tokenURL := c.AuthURL, c.TokenURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// ParseScopes splits a space or comma separated scope list.
func ParseScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (c Config) tokenFile() string {
	if c.TokenFile == "" {
		return DefaultTokenFile
	}
	return c.TokenFile
}
