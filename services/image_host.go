//go:generate go run go.uber.org/mock/mockgen -source=image_host.go -destination=../mocks/mock_image_host.go -package=mocks
package services

import (
	"chat-wire/errors"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ImageHost stores raw image bytes somewhere retrievable and returns the
// hosted reference. The message store only ever sees that reference,
// never the bytes.
type ImageHost interface {
	Upload(ctx context.Context, data []byte, extension string) (string, error)
}

// decodeImagePayload accepts the client-side payload (a data URI or bare
// base64) and returns the raw bytes plus the sniffed file extension.
// Anything that does not sniff as image/* is rejected: the declared MIME
// of a data URI is untrusted input.
func decodeImagePayload(payload string) ([]byte, string, error) {
	if idx := strings.Index(payload, ","); idx != -1 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errors.ErrNotAnImage, err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, "", fmt.Errorf("%w: got %s", errors.ErrNotAnImage, mime.String())
	}
	return data, mime.Extension(), nil
}

// DiskImageHost is the default ImageHost: files land in a local uploads
// directory served by the HTTP layer under baseURL. A CDN-backed
// implementation would replace this without touching the services.
type DiskImageHost struct {
	log     *slog.Logger
	dir     string
	baseURL string
}

func NewDiskImageHost(log *slog.Logger, dir, baseURL string) (*DiskImageHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskImageHost{log: log, dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (h *DiskImageHost) Upload(_ context.Context, data []byte, extension string) (string, error) {
	name := uuid.NewString() + extension
	if err := os.WriteFile(filepath.Join(h.dir, name), data, 0o644); err != nil {
		return "", err
	}
	h.log.Debug("Image stored", "file", name, "bytes", len(data))
	return h.baseURL + "/" + name, nil
}
