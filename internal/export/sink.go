package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Sink stores rendered artifacts and returns where they can be fetched.
type Sink interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LocalSink writes artifacts under Dir.
type LocalSink struct {
	Dir string
}

func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

func (s *LocalSink) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	dst := filepath.Join(s.Dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export %s: %w", key, err)
	}
	return dst, nil
}

// MinioSink uploads artifacts to an S3-compatible bucket.
type MinioSink struct {
	Client *minio.Client
	Bucket string
}

// MinioConfig holds the connection settings for NewMinioSink.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioSink(cfg MinioConfig) (*MinioSink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio sink requires endpoint and bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &MinioSink{Client: client, Bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioSink) EnsureBucket(ctx context.Context) error {
	ok, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.Bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", s.Bucket, err)
	}
	return nil
}

func (s *MinioSink) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading export %s: %w", key, err)
	}
	return "/" + s.Bucket + "/" + key, nil
}

// Store puts a rendered artifact into sink under prefix and records the
// returned location on the artifact.
func Store(ctx context.Context, sink Sink, prefix string, a *Artifact) error {
	key := a.Filename
	if prefix != "" {
		key = prefix + "/" + a.Filename
	}
	loc, err := sink.Put(ctx, key, a.ContentType, a.Data)
	if err != nil {
		return err
	}
	a.Location = loc
	return nil
}
