package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

var ErrStorageDisabled = errors.New("file storage is not configured")

// FileStore stores task content and submission files. URLs handed out are
// plain object URLs; SignURL turns one into a short-lived download link.
type FileStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, rawURL string) error
	SignURL(ctx context.Context, rawURL string) (string, error)
	Owns(rawURL string) bool
}

type FileStoreConfig struct {
	Bucket string
	// EmulatorHost points at a fake-gcs server; signing is skipped there.
	EmulatorHost  string
	PublicBaseURL string
	SignedURLTTL  time.Duration
}

type gcsFileStore struct {
	log      *logger.Logger
	client   *storage.Client
	bucket   string
	baseURL  string
	ttl      time.Duration
	emulator bool
}

func NewFileStore(ctx context.Context, log *logger.Logger, cfg FileStoreConfig) (FileStore, error) {
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	if cfg.Bucket == "" {
		log.Warn("GCS_BUCKET not set; file uploads are disabled")
		return disabledFileStore{}, nil
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = time.Hour
	}

	emulatorHost := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	client, err := storage.NewClient(ctx, storageClientOptions(emulatorHost, os.Getenv)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" && emulatorHost != "" {
		base = emulatorHost
	}
	if base == "" {
		base = "https://storage.googleapis.com"
	}

	log.Info("File storage initialized", "bucket", cfg.Bucket, "emulator", emulatorHost != "", "public_base_url", base)
	return &gcsFileStore{
		log:      log.With("service", "FileStore"),
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  base,
		ttl:      cfg.SignedURLTTL,
		emulator: emulatorHost != "",
	}, nil
}

func (s *gcsFileStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
}

// keyFromURL extracts the object key when rawURL points into this bucket.
func (s *gcsFileStore) keyFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, "/")

	base, _ := url.Parse(s.baseURL)
	if base != nil && strings.EqualFold(u.Host, base.Host) {
		p = strings.TrimPrefix(p, strings.Trim(base.Path, "/")+"/")
		if rest, ok := strings.CutPrefix(p, s.bucket+"/"); ok && rest != "" {
			return rest, true
		}
	}
	if strings.EqualFold(u.Host, "storage.googleapis.com") {
		if rest, ok := strings.CutPrefix(p, s.bucket+"/"); ok && rest != "" {
			return rest, true
		}
	}
	if strings.EqualFold(u.Host, s.bucket+".storage.googleapis.com") && p != "" {
		return p, true
	}
	return "", false
}

func (s *gcsFileStore) Owns(rawURL string) bool {
	_, ok := s.keyFromURL(rawURL)
	return ok
}

func (s *gcsFileStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	key := objectKey(folder, filename)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *gcsFileStore) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.keyFromURL(rawURL)
	if !ok {
		return fmt.Errorf("url %q is not in bucket %q", rawURL, s.bucket)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

// SignURL returns a V4 signed GET URL for objects in this bucket. Foreign
// URLs are returned unchanged.
func (s *gcsFileStore) SignURL(_ context.Context, rawURL string) (string, error) {
	key, ok := s.keyFromURL(rawURL)
	if !ok || s.emulator {
		return rawURL, nil
	}
	signed, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(s.ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign %q: %w", key, err)
	}
	return signed, nil
}

type disabledFileStore struct{}

func (disabledFileStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageDisabled
}
func (disabledFileStore) Delete(context.Context, string) error { return ErrStorageDisabled }
func (disabledFileStore) SignURL(_ context.Context, rawURL string) (string, error) {
	return rawURL, nil
}
func (disabledFileStore) Owns(string) bool { return false }

// LooksSigned reports whether rawURL carries a signature query (GCS V2/V4
// or S3). Such URLs are derived, short-lived forms of a stored URL.
func LooksSigned(rawURL string) bool {
	for _, marker := range []string{"X-Goog-Signature", "X-Amz-Signature", "Signature=", "Expires="} {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}
	return false
}

func objectKey(folder, filename string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = "uploads"
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s/%s_%s", folder, uuid.NewString(), name)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".zip"):
		return "application/zip"
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return ""
	}
}
