// Package gitsync commits and pushes content edits made through a locally
// running CMS.
package gitsync

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultDebounce = 2 * time.Second

// Runner executes git with args inside dir and returns its stdout.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ExecGit runs the git binary found in PATH.
func ExecGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

type Syncer struct {
	// Repo is the root of the git checkout.
	Repo string
	// Dir is the watched content directory, relative to Repo.
	Dir      string
	Remote   string
	Branch   string
	Debounce time.Duration
	Git      Runner
	Logger   *zap.Logger

	now func() time.Time
}

func (s *Syncer) defaults() {
	if s.Remote == "" {
		s.Remote = "origin"
	}
	if s.Branch == "" {
		s.Branch = "main"
	}
	if s.Debounce <= 0 {
		s.Debounce = DefaultDebounce
	}
	if s.Git == nil {
		s.Git = ExecGit
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
}

// Sync commits and pushes pending changes below Dir. It reports whether a
// commit was made.
func (s *Syncer) Sync(ctx context.Context) (bool, error) {
	s.defaults()
	status, err := s.Git(ctx, s.Repo, "status", "--porcelain", s.Dir)
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(status)) == 0 {
		s.Logger.Debug("no content changes")
		return false, nil
	}

	msg := "chore: update content via CMS - " + s.now().UTC().Format(time.RFC3339)
	steps := [][]string{
		{"add", s.Dir},
		{"commit", "-m", msg},
		{"push", s.Remote, s.Branch},
	}
	for _, args := range steps {
		if _, err := s.Git(ctx, s.Repo, args...); err != nil {
			return false, err
		}
	}
	s.Logger.Info("content pushed", zap.String("remote", s.Remote), zap.String("branch", s.Branch))
	return true, nil
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		return errors.Wrapf(w.Add(path), "watch %q", path)
	})
}

// Watch syncs after every burst of changes below Dir until ctx is done.
// Sync failures are logged and watching continues.
func (s *Syncer) Watch(ctx context.Context) error {
	s.defaults()
	root := filepath.Join(s.Repo, s.Dir)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()
	if err := addRecursive(w, root); err != nil {
		return err
	}
	s.Logger.Info("watching content", zap.String("dir", root))

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if hidden(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.Logger.Debug("content changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addRecursive(w, ev.Name); err != nil {
						s.Logger.Warn("watch new directory", zap.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(s.Debounce)
			} else {
				timer.Reset(s.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if _, err := s.Sync(ctx); err != nil {
				s.Logger.Error("sync content", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.Logger.Warn("watcher error", zap.Error(err))
		}
	}
}
