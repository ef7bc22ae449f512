package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	applog "possales/internal/log"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{ClientID: "id", ClientSecret: "s", RedirectURL: "http://localhost:8085/callback"}, false},
		{"missing id", Config{ClientSecret: "s", RedirectURL: "http://localhost:8085/callback"}, true},
		{"relative redirect", Config{ClientID: "id", ClientSecret: "s", RedirectURL: "/callback"}, true},
		{"empty", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestOAuth2Defaults(t *testing.T) {
	oc := Config{ClientID: "id"}.OAuth2()
	if oc.Endpoint.AuthURL != DefaultAuthURL || oc.Endpoint.TokenURL != DefaultTokenURL {
		t.Fatalf("unexpected endpoint %+v", oc.Endpoint)
	}
	if strings.Join(oc.Scopes, " ") != "RECEIPTS_READ ITEMS_READ" {
		t.Fatalf("unexpected scopes %v", oc.Scopes)
	}
}

func TestParseScopes(t *testing.T) {
	got := ParseScopes("RECEIPTS_READ, ITEMS_READ  CUSTOMERS_READ")
	if len(got) != 3 || got[2] != "CUSTOMERS_READ" {
		t.Fatalf("unexpected scopes %v", got)
	}
	if ParseScopes("  ") != nil {
		t.Fatal("blank scopes should be nil")
	}
}

func TestLoadTokenKinds(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}
	tests := []struct {
		name string
		path string
		kind string
	}{
		{"absent", filepath.Join(dir, "nope.json"), KindAbsent},
		{"malformed", write("bad.json", "{not json"), KindMalformed},
		{"missing field", write("empty.json", `{"token_type":"Bearer"}`), KindMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileTokenSource{Path: tt.path}.Token()
			var ce *CredentialError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CredentialError, got %v", err)
			}
			if ce.Kind != tt.kind || ce.Path != tt.path {
				t.Fatalf("unexpected error %+v", ce)
			}
			if !errors.Is(err, ErrCredential) {
				t.Fatal("expected errors.Is ErrCredential")
			}
		})
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "abc", RefreshToken: "r"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	tok, err := LoadToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok.AccessToken != "abc" || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestHTTPClientSendsBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "xyz"}); err != nil {
		t.Fatal(err)
	}
	c := NewHTTPClient(context.Background(), FileTokenSource{Path: path}, 5*time.Second)
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got != "Bearer xyz" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestHTTPClientCredentialErrorIsMatchable(t *testing.T) {
	c := NewHTTPClient(context.Background(), FileTokenSource{Path: filepath.Join(t.TempDir(), "none.json")}, time.Second)
	_, err := c.Get("http://127.0.0.1:1/")
	var ce *CredentialError
	if !errors.As(err, &ce) || ce.Kind != KindAbsent {
		t.Fatalf("expected absent credential error, got %v", err)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func newTestFlow(t *testing.T) (*Flow, string) {
	t.Helper()
	redirect := fmt.Sprintf("http://127.0.0.1:%d/callback", freePort(t))
	f, err := NewFlow(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: redirect}, applog.Discard())
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	return f, redirect
}

// hit retries until the listener is up.
func hit(t *testing.T, target string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		resp, err := http.Get(target)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("callback never reached %s", target)
}

func TestWaitForCode(t *testing.T) {
	f, redirect := newTestFlow(t)
	go hit(t, redirect+"?"+url.Values{"code": {"c0de"}, "state": {f.State()}}.Encode())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := f.WaitForCode(ctx)
	if err != nil || code != "c0de" {
		t.Fatalf("WaitForCode() = %q, %v", code, err)
	}
}

func TestWaitForCodeRejectsStateMismatch(t *testing.T) {
	f, redirect := newTestFlow(t)
	go hit(t, redirect+"?"+url.Values{"code": {"c0de"}, "state": {"forged"}}.Encode())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := f.WaitForCode(ctx); err == nil || !strings.Contains(err.Error(), "state") {
		t.Fatalf("expected state mismatch, got %v", err)
	}
}

func TestWaitForCodeRootPathIgnoresStrayRequests(t *testing.T) {
	redirect := fmt.Sprintf("http://127.0.0.1:%d", freePort(t))
	f, err := NewFlow(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: redirect}, applog.Discard())
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	go func() {
		hit(t, redirect+"/favicon.ico")
		hit(t, redirect+"/?"+url.Values{"code": {"c0de"}, "state": {f.State()}}.Encode())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := f.WaitForCode(ctx)
	if err != nil || code != "c0de" {
		t.Fatalf("WaitForCode() = %q, %v", code, err)
	}
}

func TestWaitForCodeTimeout(t *testing.T) {
	f, _ := newTestFlow(t)
	f.SetTimeout(50 * time.Millisecond)
	if _, err := f.WaitForCode(context.Background()); err == nil {
		t.Fatal("expected timeout")
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	f, _ := newTestFlow(t)
	u, err := url.Parse(f.AuthCodeURL())
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != f.State() || q.Get("client_id") != "id" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected authorize url %s", u)
	}
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "c0de" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","refresh_token":"ref","expires_in":3600}`)
	}))
	defer srv.Close()

	f, err := NewFlow(Config{
		ClientID: "id", ClientSecret: "s",
		RedirectURL: "http://127.0.0.1:1/callback",
		TokenURL:    srv.URL,
	}, applog.Discard())
	if err != nil {
		t.Fatal(err)
	}
	tok, err := f.Exchange(context.Background(), "c0de")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if tok.AccessToken != "tok" || tok.RefreshToken != "ref" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if _, err := f.Exchange(context.Background(), "wrong"); err == nil {
		t.Fatal("expected exchange failure")
	}
}
