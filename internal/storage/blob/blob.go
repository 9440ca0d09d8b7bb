// Package blob stores raw document bytes keyed by document id.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"portal/internal/config"
	docsysSvc "portal/internal/domain/services/docsystem"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen matches mimetype's default read limit
const sniffLen = 3072

// New builds the blob store selected by BLOB_BACKEND
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docsysSvc.BlobStore, error) {
	switch cfg.BlobBackend {
	case "memory":
		logger.Info("using in-memory blob storage")
		return NewMemoryStore(), nil
	case "local":
		logger.Info("using local blob storage", "dir", cfg.BlobLocalDir)
		return NewLocalStore(cfg.BlobLocalDir)
	case "s3":
		logger.Info("using s3 blob storage",
			"bucket", cfg.S3Bucket,
			"region", cfg.S3Region,
			"endpoint", cfg.S3Endpoint,
		)
		return NewS3Store(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q (supported: memory, local, s3)", cfg.BlobBackend)
	}
}

// sniff reads the head of r to detect its MIME type and returns a reader
// that replays the head followed by the rest of r.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head = head[:n]

	mimeType := mimetype.Detect(head).String()
	return mimeType, io.MultiReader(bytes.NewReader(head), r), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
