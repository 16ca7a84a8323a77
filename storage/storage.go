package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Active is the configured storage driver. Init picks S3 when credentials
// are present, local disk otherwise.
var Active Uploader

// Init selects the storage driver from the environment.
func Init() {
	if os.Getenv("S3_BUCKET") != "" {
		s3u, err := newS3Uploader()
		if err != nil {
			log.Fatal("Failed to initialize S3 storage:", err)
		}
		Active = s3u
		log.Println("Object storage: S3 bucket", os.Getenv("S3_BUCKET"))
		return
	}
	Active = &localUploader{dir: "uploads"}
	log.Println("Object storage: local ./uploads (S3_BUCKET not set)")
}

// SaveImage uploads a multipart image under the given key prefix and returns
// its URL. The stored key embeds a uuid so concurrent uploads never collide.
func SaveImage(ctx context.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Active.Upload(ctx, key, contentType, f)
}

// localUploader writes files under a directory and serves them by path.
// Development fallback only.
type localUploader struct {
	dir string
}

func (l *localUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, body); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(path), nil
}
