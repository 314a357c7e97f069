package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dataroom-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const refScheme = "minio://"

// maxContentSize caps how much of an object is read into a response.
const maxContentSize = 8 << 20

// ContentStore reads document bodies from object storage.
type ContentStore struct {
	client        *minio.Client
	defaultBucket string
}

// NewContentStore connects to MinIO and makes sure the document bucket exists.
func NewContentStore(ctx context.Context, cfg *config.MinIOConfig, logger *zap.Logger) (*ContentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.DocumentBucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", cfg.DocumentBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.DocumentBucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.DocumentBucket, err)
		}
		logger.Info("Created bucket", zap.String("bucket", cfg.DocumentBucket))
	}

	return &ContentStore{client: client, defaultBucket: cfg.DocumentBucket}, nil
}

// Fetch reads the object named by ref, either "minio://bucket/object" or a
// bare object name in the document bucket.
func (s *ContentStore) Fetch(ctx context.Context, ref string) (string, error) {
	bucket, object, err := ParseRef(ref, s.defaultBucket)
	if err != nil {
		return "", err
	}

	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("error getting %s/%s: %w", bucket, object, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(io.LimitReader(obj, maxContentSize))
	if err != nil {
		return "", fmt.Errorf("error reading %s/%s: %w", bucket, object, err)
	}
	return string(body), nil
}

func ParseRef(ref, defaultBucket string) (bucket, object string, err error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, refScheme) {
		rest := strings.TrimPrefix(ref, refScheme)
		bucket, object, _ = strings.Cut(rest, "/")
	} else {
		bucket, object = defaultBucket, strings.TrimPrefix(ref, "/")
	}

	if bucket == "" || object == "" || strings.Contains(object, "..") {
		return "", "", fmt.Errorf("invalid content reference %q", ref)
	}
	return bucket, object, nil
}
