package auth

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const SessionCookie = "cms_session"

type Handler struct {
	store  *Store
	logger *zap.Logger
	mux    *http.ServeMux
}

func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{store: store, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /api/auth/login", h.login)
	h.mux.HandleFunc("POST /api/auth/logout", h.logout)
	h.mux.Handle("GET /api/auth/session", h.RequireSession(http.HandlerFunc(h.session)))
	h.mux.Handle("POST /api/auth/password", h.RequireSession(http.HandlerFunc(h.password)))
	h.mux.Handle("POST /api/auth/username", h.RequireSession(http.HandlerFunc(h.username)))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type result struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Username string `json:"username,omitempty"`
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch errors.Cause(err) {
	case ErrInvalidCredentials:
		writeJSON(w, http.StatusUnauthorized, result{Error: "Invalid credentials"})
	case ErrNoSession, ErrSessionExpired:
		writeJSON(w, http.StatusUnauthorized, result{Error: "Not authenticated"})
	default:
		h.logger.Error("auth request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, result{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Error: "Invalid JSON body"})
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Error: err.Error()})
		return false
	}
	return true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l *loginRequest) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Username, validation.Required),
		validation.Field(&l.Password, validation.Required),
	)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.store.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("admin logged in", zap.String("username", sess.Username))
	writeJSON(w, http.StatusOK, result{Success: true, Username: sess.Username})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if err := h.store.Logout(r.Context(), c.Value); err != nil {
			h.fail(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, result{Success: true})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r)
	writeJSON(w, http.StatusOK, result{Success: true, Username: sess.Username})
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (p *passwordRequest) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(6, 0)),
	)
}

func (h *Handler) password(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.UpdatePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true})
}

type usernameRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (u *usernameRequest) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Username, validation.Required),
		validation.Field(&u.Password, validation.Required),
	)
}

func (h *Handler) username(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.UpdateUsername(r.Context(), req.Username, req.Password); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Username: req.Username})
}
