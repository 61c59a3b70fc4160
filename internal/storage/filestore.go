package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge   = errors.New("file exceeds size limit")
	ErrNotExist   = errors.New("stored file does not exist")
	ErrOutsideDir = errors.New("path escapes storage root")
)

// Folders used under the upload root
const (
	DirTracker  = "tracker_uploads"
	DirProfile  = "profile_pics"
	DirResumes  = "resumes"
	DirExports  = "exports"
	mediaPrefix = "/media/"
)

type StoredFile struct {
	Path         string `json:"path"` // slash separated, relative to the root
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// FileStore keeps uploaded files. Paths it returns are relative and can be
// turned into public URLs with URL.
type FileStore interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader, maxBytes int64) (*StoredFile, error)
	Open(relPath string) (io.ReadCloser, error)
	Delete(relPath string) error
	LocalPath(relPath string) (string, error)
	URL(relPath string) string
}

type localStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, publicBaseURL string) (FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &localStore{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Save writes r under dir with a generated name that keeps the original
// extension. maxBytes <= 0 disables the size check.
func (s *localStore) Save(ctx context.Context, dir, originalName string, r io.Reader, maxBytes int64) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	rel := path.Join(dir, uuid.NewString()+ext)
	full, err := s.LocalPath(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	out, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(out, src)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{Path: rel, OriginalName: originalName, Size: n}, nil
}

func (s *localStore) Open(relPath string) (io.ReadCloser, error) {
	full, err := s.LocalPath(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

// Delete is a no-op for paths that are already gone.
func (s *localStore) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	full, err := s.LocalPath(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}
	return nil
}

func (s *localStore) LocalPath(relPath string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(relPath, mediaPrefix))
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", ErrOutsideDir
	}
	return full, nil
}

func (s *localStore) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + MediaPath(relPath)
}

// MediaPath is the site-relative path stored on records, e.g.
// /media/profile_pics/<name>.jpg.
func MediaPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	return mediaPrefix + strings.TrimPrefix(strings.TrimPrefix(relPath, mediaPrefix), "/")
}

// MediaPrefix is the route prefix the upload root is served under.
func MediaPrefix() string {
	return strings.TrimSuffix(mediaPrefix, "/")
}
