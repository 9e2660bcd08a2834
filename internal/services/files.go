package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileStore keeps uploaded files and resolves them to public URLs.
// Implementations must treat Delete of a missing reference as success.
type FileStore interface {
	Store(ctx context.Context, dir, ext string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// Upload is a file received from a client. Content is read at most once.
type Upload struct {
	Filename string
	Content  io.Reader
}

// identityDocsDir holds the identity documents attached to requests. Unlike
// pet images they are only served to the requester and the pet owner.
const identityDocsDir = "valid_ids"

// IsIdentityDocument reports whether ref names a stored identity document.
func IsIdentityDocument(ref string) bool {
	return strings.HasPrefix(ref, identityDocsDir+"/")
}

// uploadRule limits what a given upload field accepts.
type uploadRule struct {
	dir     string
	maxSize int64
	allowed []string // MIME types, matched against the sniffed content
	label   string   // human description for messages, e.g. "jpeg, png or gif image"
}

var (
	petImageRule = uploadRule{
		dir:     "pets",
		maxSize: 2 << 20,
		allowed: []string{"image/jpeg", "image/png", "image/gif"},
		label:   "jpeg, png or gif image",
	}
	idDocumentRule = uploadRule{
		dir:     identityDocsDir,
		maxSize: 5 << 20,
		allowed: []string{"image/jpeg", "image/png", "application/pdf"},
		label:   "jpeg, png or pdf file",
	}
)

// pendingFile is an upload that passed validation and can be stored.
type pendingFile struct {
	rule uploadRule
	data []byte
	ext  string
}

// readUpload reads and checks up. Size and type failures are added to verr
// under field; a nil upload yields nil.
func readUpload(field string, up *Upload, rule uploadRule, verr *ValidationError) *pendingFile {
	if up == nil || up.Content == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(up.Content, rule.maxSize+1))
	if err != nil {
		verr.add(field, fmt.Sprintf("%s could not be read", field))
		return nil
	}
	if int64(len(data)) > rule.maxSize {
		verr.add(field, fmt.Sprintf("%s must not exceed %d KB", field, rule.maxSize>>10))
		return nil
	}
	if len(data) == 0 {
		verr.add(field, fmt.Sprintf("%s is empty", field))
		return nil
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), rule.allowed...) {
		verr.add(field, fmt.Sprintf("%s must be a %s", field, rule.label))
		return nil
	}
	return &pendingFile{rule: rule, data: data, ext: mt.Extension()}
}

// store saves f and returns its reference; a nil f stores nothing.
func (f *pendingFile) store(ctx context.Context, fs FileStore) (*string, error) {
	if f == nil {
		return nil, nil
	}
	ref, err := fs.Store(ctx, f.rule.dir, f.ext, f.data)
	if err != nil {
		return nil, fmt.Errorf("store %s upload: %w", f.rule.dir, err)
	}
	return &ref, nil
}

// releaseFiles deletes refs best-effort. Failures are logged and otherwise
// ignored: a stray file must never fail or roll back a workflow step.
func releaseFiles(ctx context.Context, fs FileStore, refs ...string) {
	if fs == nil {
		return
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := fs.Delete(ctx, ref); err != nil {
			logFrom(ctx).Warn().Err(err).Str("file_ref", ref).Msg("file cleanup failed")
		}
	}
}

// resolveURL returns a pointer to the public URL of ref, or nil.
func resolveURL(fs FileStore, ref *string) *string {
	if fs == nil || ref == nil || *ref == "" {
		return nil
	}
	u := fs.URL(*ref)
	return &u
}

// logFrom returns the request-scoped logger attached to ctx, falling back to
// the global logger.
func logFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
