// Package storage implements the file store used for pet images and identity
// documents. Files live on an afero filesystem (the OS in production, memory
// in tests) and are addressed by opaque references such as
// "pets/6f1c....png". Clients only ever see URLs built by URL.
package storage

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// RoutePrefix is where stored files are served by the HTTP router.
const RoutePrefix = "/files"

// LocalStore stores uploads on an afero filesystem.
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStore returns a store over fsys. publicBaseURL is the externally
// reachable origin, e.g. "https://pets.example.com".
func NewLocalStore(fsys afero.Fs, publicBaseURL string) *LocalStore {
	return &LocalStore{fs: fsys, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// NewOSStore returns a store rooted at dir on the local disk.
func NewOSStore(dir, publicBaseURL string) *LocalStore {
	return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), dir), publicBaseURL)
}

// Store writes data under dir with a fresh random name and extension ext
// (".png", ".pdf", ...) and returns its reference.
func (s *LocalStore) Store(ctx context.Context, dir, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if err := s.fs.MkdirAll(abs(dir), 0o755); err != nil {
		return "", err
	}
	ref := path.Join(dir, uuid.NewString()+ext)
	if err := afero.WriteFile(s.fs, abs(ref), data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

// Delete removes the file behind ref. Missing files and remote references are
// not errors.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if ref == "" || isRemote(ref) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(abs(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// URL resolves ref to a public URL. Absolute http(s) references (images
// hosted elsewhere) pass through unchanged; an empty ref resolves to "".
func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if isRemote(ref) {
		return ref
	}
	return s.baseURL + RoutePrefix + "/" + strings.TrimLeft(ref, "/")
}

// Exists reports whether ref points at a stored file.
func (s *LocalStore) Exists(ref string) bool {
	ok, err := afero.Exists(s.fs, abs(ref))
	return err == nil && ok
}

// Handler serves stored files below RoutePrefix. Directories are never listed.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(RoutePrefix, http.FileServer(filesOnly{afero.NewHttpFs(s.fs)}))
}

type filesOnly struct{ fs http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil || st.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// abs maps a reference to its rooted path on the filesystem, the form the
// HTTP file server uses too.
func abs(ref string) string { return path.Clean("/" + ref) }

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
