// Package uploads stores event images on local disk and hands out the
// server-relative references that events keep in their image field.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/uploads/"

var (
	ErrNotImage = apperr.Invalid("image", "must be a PNG, JPEG, GIF or WebP image")
	ErrTooLarge = apperr.Invalid("image", "file is too large")
	ErrEmpty    = apperr.Invalid("image", "file is empty")
)

var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now for file naming.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64, logger zerolog.Logger, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create %s: %w", dir, err)
	}
	s := &Store{
		dir:      dir,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With().Str("component", "uploads").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save sniffs the content, rejects anything that is not an allowed image and
// writes it as <unix-millis><ext>. It returns the reference "/uploads/<name>".
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	limit := s.maxBytes
	if limit <= 0 {
		limit = 5 << 20
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		zerolog.Ctx(ctx).Debug().Str("filename", filename).Str("mime", mt.String()).Msg("rejected upload")
		return "", ErrNotImage
	}

	name, err := s.write(data, mt.Extension())
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("file", name).Str("mime", mt.String()).Int("bytes", len(data)).Msg("image stored")
	return URLPrefix + name, nil
}

func (s *Store) write(data []byte, ext string) (string, error) {
	millis := s.now().UnixMilli()
	for attempt := 0; attempt < 100; attempt++ {
		name := strconv.FormatInt(millis+int64(attempt), 10) + ext
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create upload: %w", err)
		}
		if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("write upload: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close upload: %w", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("create upload: no free file name")
}

// Remove deletes a file previously returned by Save. References that do not
// point into the store (external URLs) are ignored.
func (s *Store) Remove(ref string) error {
	name, ok := NameFromRef(ref)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Stored reports whether ref points into the store. The file need not exist.
func (s *Store) Stored(ref string) bool {
	_, ok := NameFromRef(ref)
	return ok
}

// Open returns a stored file for serving.
func (s *Store) Open(name string) (*os.File, error) {
	if !validName(name) {
		return nil, fs.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, name))
}

// NameFromRef extracts the file name from a "/uploads/<name>" reference.
func NameFromRef(ref string) (string, bool) {
	name, found := strings.CutPrefix(strings.TrimSpace(ref), URLPrefix)
	if !found || !validName(name) {
		return "", false
	}
	return name, true
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
