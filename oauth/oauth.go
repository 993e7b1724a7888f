// Package oauth fixes the GitHub login flow of the CMS: authorization asks for
// the repo scope and the code exchange sends the redirect_uri GitHub expects.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gamegeek/geekcms/github"
)

const (
	DefaultAuthorizeURL = "https://github.com/login/oauth/authorize"
	DefaultTokenURL     = "https://github.com/login/oauth/access_token"

	LoginPath    = "/api/keystatic/github/login"
	CallbackPath = "/api/keystatic/github/oauth/callback"
	RefreshPath  = "/api/keystatic/github/refresh-token"
	AdminPath    = "/keystatic"

	Scope     = "repo"
	cookieAge = 30 * 24 * time.Hour
)

type Config struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
}

// Middleware intercepts the CMS OAuth routes and hands everything else to
// the next handler.
type Middleware struct {
	cfg    Config
	gh     *github.Client
	http   *http.Client
	logger *zap.Logger
	next   http.Handler
}

func New(cfg Config, gh *github.Client, logger *zap.Logger, next http.Handler) *Middleware {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		cfg:    cfg,
		gh:     gh,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		next:   next,
	}
}

func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == LoginPath:
		m.login(w, r)
	case r.URL.Path == CallbackPath:
		m.callback(w, r)
	case r.URL.Path == RefreshPath && r.Method == http.MethodPost:
		m.refresh(w, r)
	default:
		m.next.ServeHTTP(w, r)
	}
}

// origin reconstructs scheme and host the browser used, honouring a TLS
// terminating proxy in front of us.
func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}
	return scheme + "://" + host
}

func callbackURL(r *http.Request) string {
	return origin(r) + CallbackPath
}

func (m *Middleware) login(w http.ResponseWriter, r *http.Request) {
	if m.cfg.ClientID == "" {
		http.Error(w, "Missing KEYSTATIC_GITHUB_CLIENT_ID", http.StatusInternalServerError)
		return
	}
	u, err := url.Parse(m.cfg.AuthorizeURL)
	if err != nil {
		m.logger.Error("bad authorize url", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	q := u.Query()
	q.Set("client_id", m.cfg.ClientID)
	q.Set("redirect_uri", callbackURL(r))
	q.Set("scope", Scope)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenError is GitHub refusing the code exchange.
type TokenError struct {
	Code        string
	Description string
}

func (e *TokenError) Error() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Code != "":
		return e.Code
	}
	return "No access token"
}

// Exchange trades an authorization code for an access token.
func (m *Middleware) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	body, err := json.Marshal(tokenRequest{
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		Code:         code,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode token request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "token request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", github.DefaultUserAgent)

	resp, err := m.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "token exchange")
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read token response")
	}
	var tr tokenResponse
	if err := json.Unmarshal(b, &tr); err != nil {
		return "", errors.Wrapf(err, "decode token response (status %d)", resp.StatusCode)
	}
	if tr.Error != "" || tr.AccessToken == "" {
		return "", &TokenError{Code: tr.Error, Description: tr.ErrorDescription}
	}
	return tr.AccessToken, nil
}

func htmlError(w http.ResponseWriter, code int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, "<h1>%s</h1><p>%s</p>", html.EscapeString(title), html.EscapeString(detail))
}

func (m *Middleware) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}
	if m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		htmlError(w, http.StatusInternalServerError, "Missing OAuth Credentials",
			"KEYSTATIC_GITHUB_CLIENT_ID and KEYSTATIC_GITHUB_CLIENT_SECRET must be set")
		return
	}

	token, err := m.Exchange(r.Context(), code, callbackURL(r))
	if err != nil {
		if te, ok := errors.Cause(err).(*TokenError); ok {
			m.logger.Warn("github oauth refused", zap.String("error", te.Code), zap.String("description", te.Description))
			htmlError(w, http.StatusUnauthorized, "GitHub OAuth Error", te.Error())
			return
		}
		m.logger.Error("oauth callback", zap.Error(err))
		htmlError(w, http.StatusInternalServerError, "OAuth Error", errors.Cause(err).Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     github.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieAge / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.Info("editor logged in via github")
	http.Redirect(w, r, AdminPath, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// refresh re-validates the cookie token against GitHub and hands it back.
func (m *Middleware) refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(github.TokenCookie)
	if err != nil || c.Value == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "No token"})
		return
	}
	if _, err := m.gh.WithToken(c.Value).User(r.Context()); err != nil {
		if github.StatusOf(err) != 0 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		m.logger.Error("token validation", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Token validation failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": c.Value})
}
