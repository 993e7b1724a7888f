package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"github.com/gamegeek/geekcms/store"
)

type AuthSuite struct {
	suite.Suite
	db    *sqlx.DB
	store *Store
	clock time.Time
	ctx   context.Context
}

func (s *AuthSuite) SetupTest() {
	db, err := store.Open(filepath.Join(s.T().TempDir(), "cms.db"))
	s.Require().NoError(err)
	s.db = db
	s.clock = time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC)
	s.store = NewStore(db)
	s.store.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *AuthSuite) TearDownTest() {
	s.db.Close()
}

func (s *AuthSuite) TestDefaultAccount() {
	name, err := s.store.Username(s.ctx)
	s.Require().NoError(err)
	s.Equal(DefaultUsername, name)

	sess, err := s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Require().NoError(err)
	s.NotEmpty(sess.Token)
	s.Equal(s.clock.Add(SessionTimeout), sess.ExpiresAt())
}

func (s *AuthSuite) TestLoginRejectsWrongCredentials() {
	_, err := s.store.Login(s.ctx, DefaultUsername, "wrong")
	s.Equal(ErrInvalidCredentials, errors.Cause(err))
	_, err = s.store.Login(s.ctx, "root", DefaultPassword)
	s.Equal(ErrInvalidCredentials, errors.Cause(err))
}

func (s *AuthSuite) TestSessionExpiry() {
	sess, err := s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Require().NoError(err)

	s.clock = s.clock.Add(SessionTimeout - time.Minute)
	got, err := s.store.Authenticated(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(DefaultUsername, got.Username)

	s.clock = s.clock.Add(2 * time.Minute)
	_, err = s.store.Authenticated(s.ctx, sess.Token)
	s.Equal(ErrSessionExpired, err)
	_, err = s.store.Authenticated(s.ctx, sess.Token)
	s.Equal(ErrNoSession, err)
}

func (s *AuthSuite) TestLogout() {
	sess, err := s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Logout(s.ctx, sess.Token))
	_, err = s.store.Authenticated(s.ctx, sess.Token)
	s.Equal(ErrNoSession, err)
	_, err = s.store.Authenticated(s.ctx, "")
	s.Equal(ErrNoSession, err)
}

func (s *AuthSuite) TestUpdatePassword() {
	err := s.store.UpdatePassword(s.ctx, "wrong", "newsecret")
	s.Equal(ErrInvalidCredentials, errors.Cause(err))

	s.Require().NoError(s.store.UpdatePassword(s.ctx, DefaultPassword, "newsecret"))
	_, err = s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Equal(ErrInvalidCredentials, errors.Cause(err))
	_, err = s.store.Login(s.ctx, DefaultUsername, "newsecret")
	s.NoError(err)
}

func (s *AuthSuite) TestUpdateUsername() {
	sess, err := s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateUsername(s.ctx, "editor", DefaultPassword))
	name, err := s.store.Username(s.ctx)
	s.Require().NoError(err)
	s.Equal("editor", name)

	got, err := s.store.Authenticated(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("editor", got.Username)

	_, err = s.store.Login(s.ctx, "editor", DefaultPassword)
	s.NoError(err)
}

func (s *AuthSuite) request(h http.Handler, method, target, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, result) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var res result
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec, res
}

func (s *AuthSuite) TestHTTPFlow() {
	h := NewHandler(s.store, nil)

	rec, res := s.request(h, http.MethodGet, "/api/auth/session", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Not authenticated", res.Error)

	rec, res = s.request(h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Invalid credentials", res.Error)

	rec, res = s.request(h, http.MethodPost, "/api/auth/login", `{"username":"admin"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(res.Error, "password")

	rec, res = s.request(h, http.MethodPost, "/api/auth/login", `{`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid JSON body", res.Error)

	rec, res = s.request(h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(res.Success)
	s.Equal("admin", res.Username)
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	cookie := cookies[0]
	s.Equal(SessionCookie, cookie.Name)
	s.True(cookie.HttpOnly)

	rec, res = s.request(h, http.MethodGet, "/api/auth/session", "", cookie)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("admin", res.Username)

	rec, res = s.request(h, http.MethodPost, "/api/auth/password", `{"oldPassword":"admin123","newPassword":"123"}`, cookie)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(res.Error, "newPassword")

	rec, _ = s.request(h, http.MethodPost, "/api/auth/password", `{"oldPassword":"admin123","newPassword":"s3cret!"}`, cookie)
	s.Equal(http.StatusOK, rec.Code)

	rec, res = s.request(h, http.MethodPost, "/api/auth/username", `{"username":"boss","password":"s3cret!"}`, cookie)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("boss", res.Username)

	rec, _ = s.request(h, http.MethodPost, "/api/auth/logout", "", cookie)
	s.Equal(http.StatusOK, rec.Code)

	rec, _ = s.request(h, http.MethodGet, "/api/auth/session", "", cookie)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthSuite) TestRequireSession() {
	h := NewHandler(s.store, nil)
	sess, err := s.store.Login(s.ctx, DefaultUsername, DefaultPassword)
	s.Require().NoError(err)

	var seen *Session
	protected := h.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r)
		writeJSON(w, http.StatusOK, result{Success: true})
	}))

	rec, _ := s.request(protected, http.MethodGet, "/", "", &http.Cookie{Name: SessionCookie, Value: sess.Token})
	s.Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(seen)
	s.Equal(sess.Token, seen.Token)

	s.clock = s.clock.Add(SessionTimeout + time.Second)
	rec, res := s.request(protected, http.MethodGet, "/", "", &http.Cookie{Name: SessionCookie, Value: sess.Token})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Not authenticated", res.Error)
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}
