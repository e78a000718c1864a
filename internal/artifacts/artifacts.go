// Package artifacts stores page screenshots. References are always
// "/screenshots/{auditID}/{name}" whatever the backend.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MOYARU/uxaudit/internal/config"
)

const pngContentType = "image/png"

// Ref is the reference recorded on a page for one screenshot.
func Ref(auditID, name string) string {
	return "/" + objectKey(auditID, name)
}

func objectKey(auditID, name string) string {
	return path.Join("screenshots", auditID, name)
}

func checkName(auditID, name string) error {
	for _, part := range []string{auditID, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("artifacts: invalid path element %q", part)
		}
	}
	return nil
}

// Local writes under {Dir}/screenshots/{auditID}/.
type Local struct {
	Dir string
}

func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

func (l *Local) Put(ctx context.Context, auditID, name string, data []byte) (string, error) {
	if err := checkName(auditID, name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(l.Dir, "screenshots", auditID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return Ref(auditID, name), nil
}

// Bucket uploads to an S3-compatible bucket with key screenshots/{auditID}/{name}.
type Bucket struct {
	mc     *minio.Client
	bucket string
}

func NewBucket(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*Bucket, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Bucket{mc: mc, bucket: bucket}, nil
}

func (b *Bucket) Put(ctx context.Context, auditID, name string, data []byte) (string, error) {
	if err := checkName(auditID, name); err != nil {
		return "", err
	}
	_, err := b.mc.PutObject(ctx, b.bucket, objectKey(auditID, name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: pngContentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	return Ref(auditID, name), nil
}

// Store is what a crawl writes screenshots to.
type Store interface {
	Put(ctx context.Context, auditID, name string, data []byte) (string, error)
}

// FromConfig picks the bucket backend when one is configured, the local
// directory otherwise.
func FromConfig(cfg config.Config) (Store, error) {
	if cfg.UseBucket() {
		return NewBucket(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL, cfg.ScreenshotsBucket)
	}
	return NewLocal(cfg.ScreenshotsDir), nil
}
