package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// allowedTypes maps sniffed content types to the extension objects are stored with.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoStore persists profile photos and returns their public URL.
type PhotoStore interface {
	Save(ctx context.Context, userID string, r io.Reader, size int64) (string, error)
}

// sniff reads the first 512 bytes to detect the real type and hands back a reader
// that still yields the full content.
func sniff(r io.Reader) (contentType, ext string, body io.Reader, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", nil, fmt.Errorf("read photo: %w", err)
	}
	head = head[:n]

	contentType = http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return contentType, "", nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return contentType, ext, io.MultiReader(bytes.NewReader(head), r), nil
}

func objectName(userID, ext string) string {
	return userID + "/" + uuid.NewString() + ext
}
