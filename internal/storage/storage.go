package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"CareerConnect/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Store keeps uploaded files and returns the public URL the file is served from.
// Only the URL is ever persisted alongside domain records.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// ObjectKey builds "<kind>/<owner>-<uuid><ext>", defaulting the extension when the upload has none.
func ObjectKey(kind, owner, filename, defaultExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = defaultExt
	}
	return path.Join(kind, fmt.Sprintf("%s-%s%s", owner, uuid.NewString(), ext))
}

func NewStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			return nil, err
		}
		logger.Info("using s3 upload store", zap.String("bucket", cfg.S3Bucket))
		return NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3PublicURL), nil
	default:
		logger.Info("using local upload store", zap.String("dir", cfg.UploadDir))
		return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), cfg.UploadDir), cfg.PublicBaseURL+"/uploads"), nil
	}
}

// NewStoreFromConfig adapts NewStore for fx, which provides no request context at construction.
func NewStoreFromConfig(cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	return NewStore(context.Background(), cfg, logger)
}

type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

func NewLocalStore(fs afero.Fs, baseURL string) *LocalStore {
	return &LocalStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteReader(s.fs, key, body); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

// ObjectPutter is the subset of the S3 client used by S3Store.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

func NewS3Store(client ObjectPutter, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
