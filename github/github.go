// Package github talks to the GitHub REST contents API of the site repository.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultUserAgent = "GameGeek-CMS"
	DefaultMessage   = "Update JSON file via CMS"

	// TokenCookie holds the OAuth access token of a logged in editor.
	TokenCookie = "keystatic-gh-access-token"

	mediaType = "application/vnd.github.v3+json"
)

var ErrNotFound = errors.New("not found")

// APIError is a non successful answer from GitHub.
type APIError struct {
	Status     int
	StatusText string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("GitHub API error: %d %s", e.Status, e.StatusText)
}

// notFoundError keeps GitHub's answer for a 404 while its cause stays
// ErrNotFound.
type notFoundError struct {
	*APIError
}

func (e notFoundError) Cause() error {
	return ErrNotFound
}

// Message returns the message GitHub answered with, or the text of err.
func Message(err error) string {
	var nf notFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return errors.Cause(err).Error()
}

// StatusOf returns the HTTP status GitHub answered with, or 0.
func StatusOf(err error) int {
	if errors.Cause(err) == ErrNotFound {
		return http.StatusNotFound
	}
	if e, ok := errors.Cause(err).(*APIError); ok {
		return e.Status
	}
	return 0
}

// Item is a file or directory entry as returned by the contents API.
type Item struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Type        string  `json:"type"`
	Size        int64   `json:"size"`
	SHA         string  `json:"sha"`
	URL         string  `json:"url,omitempty"`
	HTMLURL     string  `json:"html_url"`
	GitURL      string  `json:"git_url"`
	DownloadURL *string `json:"download_url"`
	Encoding    string  `json:"encoding,omitempty"`
	Content     string  `json:"content,omitempty"`
}

func (i Item) IsDir() bool {
	return i.Type == "dir"
}

// Decode returns the base64 decoded file content.
func (i Item) Decode() ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, i.Content)
	b, err := base64.StdEncoding.DecodeString(clean)
	return b, errors.Wrapf(err, "decode %q", i.Path)
}

// Contents is either a single file or a directory listing.
type Contents struct {
	File *Item
	Dir  []Item
}

func (c *Contents) IsDir() bool {
	return c.File == nil
}

type Client struct {
	BaseURL   string
	Repo      string
	Branch    string
	Token     string
	UserAgent string
	HTTP      *http.Client
}

func NewClient(repo, branch string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		Repo:      repo,
		Branch:    branch,
		UserAgent: DefaultUserAgent,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a copy of c authenticating with token.
func (c *Client) WithToken(token string) *Client {
	cc := *c
	cc.Token = token
	return &cc
}

func (c *Client) contentsURL(p string, withRef bool) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/repos/" + c.Repo + "/contents/" + strings.Join(segs, "/")
	if withRef && c.Branch != "" {
		u += "?ref=" + url.QueryEscape(c.Branch)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &msg) == nil {
			apiErr.Message = msg.Message
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, notFoundError{apiErr}
		}
		return nil, apiErr
	}
	return b, nil
}

// Raw returns GitHub's answer for p unmodified.
func (c *Client) Raw(ctx context.Context, p string) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(p, true), nil)
	if err != nil {
		return nil, err
	}
	b, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Get fetches the file or directory at p on the configured branch.
func (c *Client) Get(ctx context.Context, p string) (*Contents, error) {
	b, err := c.Raw(ctx, p)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var dir []Item
		if err := json.Unmarshal(b, &dir); err != nil {
			return nil, errors.Wrapf(err, "decode listing %q", p)
		}
		if dir == nil {
			dir = []Item{}
		}
		return &Contents{Dir: dir}, nil
	}
	var file Item
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, errors.Wrapf(err, "decode file %q", p)
	}
	return &Contents{File: &file}, nil
}

// ReadFile returns the decoded content of the file at p.
func (c *Client) ReadFile(ctx context.Context, p string) ([]byte, error) {
	contents, err := c.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if contents.IsDir() {
		return nil, errors.Errorf("%q is a directory", p)
	}
	return contents.File.Decode()
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Put creates or updates the file at p and returns the commit SHA. The
// current blob SHA is looked up first; if that fails the file is created.
func (c *Client) Put(ctx context.Context, p string, content []byte, message string) (string, error) {
	if message == "" {
		message = DefaultMessage
	}
	body := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.Branch,
	}
	if cur, err := c.Get(ctx, p); err == nil && !cur.IsDir() {
		body.SHA = cur.File.SHA
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "encode put request")
	}
	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(p, false), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out putResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", errors.Wrap(err, "decode put response")
	}
	return out.Commit.SHA, nil
}

type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
}

// User returns the account the client's token belongs to.
func (c *Client) User(ctx context.Context) (*User, error) {
	u := strings.TrimRight(c.BaseURL, "/") + "/user"
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	b, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &user, nil
}
