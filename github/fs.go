package github

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
)

type fileSystem struct {
	ctx context.Context
	c   *Client
}

// FS exposes the repository as http.FileSystem so the content loader can read
// straight from GitHub.
func (c *Client) FS(ctx context.Context) http.FileSystem {
	return fileSystem{ctx: ctx, c: c}
}

func (fs fileSystem) Open(name string) (http.File, error) {
	name = path.Clean("/" + name)
	contents, err := fs.c.Get(fs.ctx, name)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
		}
		return nil, err
	}
	if contents.IsDir() {
		return &dirFile{info: fileInfo{name: path.Base(name), dir: true}, items: contents.Dir}, nil
	}
	b, err := contents.File.Decode()
	if err != nil {
		return nil, err
	}
	return &memFile{
		Reader: bytes.NewReader(b),
		info:   fileInfo{name: contents.File.Name, size: int64(len(b))},
	}, nil
}

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.dir }
func (fi fileInfo) Sys() interface{}   { return nil }
func (fi fileInfo) Mode() os.FileMode {
	if fi.dir {
		return os.ModeDir | 0555
	}
	return 0444
}

type memFile struct {
	*bytes.Reader
	info fileInfo
}

func (f *memFile) Close() error { return nil }
func (f *memFile) Stat() (os.FileInfo, error) {
	return f.info, nil
}
func (f *memFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, errors.Errorf("%q is not a directory", f.info.name)
}

type dirFile struct {
	info  fileInfo
	items []Item
	pos   int
}

func (d *dirFile) Close() error                   { return nil }
func (d *dirFile) Read([]byte) (int, error)       { return 0, io.EOF }
func (d *dirFile) Seek(int64, int) (int64, error) { return 0, nil }
func (d *dirFile) Stat() (os.FileInfo, error) {
	return d.info, nil
}

func (d *dirFile) Readdir(count int) ([]os.FileInfo, error) {
	rest := d.items[d.pos:]
	if count > 0 {
		if len(rest) == 0 {
			return nil, io.EOF
		}
		if count < len(rest) {
			rest = rest[:count]
		}
	}
	ret := make([]os.FileInfo, 0, len(rest))
	for _, it := range rest {
		ret = append(ret, fileInfo{name: it.Name, size: it.Size, dir: it.IsDir()})
	}
	d.pos += len(rest)
	return ret, nil
}
