package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

// URLPrefix is the route the server mounts LocalStore's directory under.
const URLPrefix = "/uploads"

// LocalStore writes photos below a directory served statically by the API.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, userID string, r io.Reader, size int64) (string, error) {
	contentType, ext, body, err := sniff(r)
	if err != nil {
		return "", err
	}

	name := objectName(userID, ext)
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	logger.Log.Debug("Photo stored on disk",
		zap.String("user_id", userID),
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int64("size", written),
	)

	return s.baseURL + URLPrefix + "/" + name, nil
}
