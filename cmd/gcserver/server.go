package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	geekcms "github.com/gamegeek/geekcms"
	"github.com/gamegeek/geekcms/api"
	"github.com/gamegeek/geekcms/auth"
	"github.com/gamegeek/geekcms/backend"
	"github.com/gamegeek/geekcms/config"
	"github.com/gamegeek/geekcms/contact"
	"github.com/gamegeek/geekcms/github"
	"github.com/gamegeek/geekcms/oauth"
	"github.com/gamegeek/geekcms/site"
	"github.com/gamegeek/geekcms/store"
)

type server struct {
	http.Handler
	db *sqlx.DB
}

func (s *server) Close() error {
	return s.db.Close()
}

// opener picks the content backend for cfg.Content.Source.
func opener(cfg *config.Config, gh *github.Client) site.Opener {
	switch cfg.Content.Source {
	case "git":
		return func(context.Context) (backend.Backend, error) {
			return backend.Git(cfg.Content.Root, cfg.Content.Branch)
		}
	case "github":
		return func(ctx context.Context) (backend.Backend, error) {
			return gh.FS(ctx), nil
		}
	default:
		return func(context.Context) (backend.Backend, error) {
			return backend.Dir(cfg.Content.Root)
		}
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server, error) {
	gh := github.NewClient(cfg.GitHub.Repo, cfg.GitHub.Branch)
	if cfg.GitHub.APIURL != "" {
		gh.BaseURL = cfg.GitHub.APIURL
	}
	gh.Token = cfg.GitHub.Token

	open := opener(cfg, gh)
	fs, err := open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open content backend")
	}

	db, err := store.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewHandler(auth.NewStore(db), logger)
	contacts := contact.NewService(db, cfg.Contact.SheetsURL, logger)
	content := api.New(api.Options{
		GitHub: gh,
		Token:  cfg.GitHub.Token,
		Loader: geekcms.NewLoader(fs, logger),
		Logger: logger,
		Debug:  cfg.Debug,
	})

	mux := http.NewServeMux()
	mux.Handle("POST /api/contact", contacts.SubmitHandler())
	mux.Handle("GET /api/contact/submissions", sessions.RequireSession(contacts.ListHandler()))
	mux.Handle("/api/auth/", sessions)
	mux.Handle("/api/github/", content)
	mux.Handle("/api/local/", content)
	mux.Handle("/api/content", content)
	mux.Handle("/", site.New(open, logger, cfg.Debug))

	h := oauth.New(oauth.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		AuthorizeURL: cfg.OAuth.AuthorizeURL,
		TokenURL:     cfg.OAuth.TokenURL,
	}, gh, logger, mux)

	return &server{Handler: accessLog(logger, h), db: db}, nil
}
