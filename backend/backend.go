// Package backend provides the filesystems content is read from.
package backend

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	g "github.com/gogits/git"
	"github.com/lemmi/ghfs"
	"github.com/pkg/errors"
)

type Backend interface {
	http.FileSystem
}

// CIDer is implemented by backends that can name the revision they serve.
type CIDer interface {
	CID() string
}

// Dir serves content from a plain directory.
func Dir(path string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "filepath.Abs(%q)", path)
	}
	return http.Dir(abs), nil
}

type gitBackend struct {
	http.FileSystem
	cid string
}

func (gb gitBackend) CID() string {
	return gb.cid
}

// gitDir returns the .git directory of the checkout at path, or path itself
// for bare repositories.
func gitDir(path string) string {
	dot := filepath.Join(path, ".git")
	if fi, err := os.Stat(dot); err == nil && fi.IsDir() {
		return dot
	}
	return path
}

// Git serves the tree of the head commit of branch in the repository at
// path. Both a checkout and a bare repository are accepted.
func Git(path, branch string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "filepath.Abs(%q)", path)
	}
	abs = gitDir(abs)
	repo, err := g.OpenRepository(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "g.OpenRepository(%q)", abs)
	}
	commit, err := repo.GetCommitOfBranch(branch)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not open branch %q", branch)
	}
	return gitBackend{
		FileSystem: ghfs.FromCommit(commit),
		cid:        strings.Trim(commit.Id.String(), "\""),
	}, nil
}

// ETag returns the revision of b if it has one.
func ETag(b Backend) string {
	if c, ok := b.(CIDer); ok {
		return c.CID()
	}
	return ""
}
