// Package archive keeps copies of analyzed documents and their results in an
// S3-compatible object store.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// objectClient is the subset of *minio.Client used by Archive.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive writes documents and analysis results to a bucket.
type Archive struct {
	client objectClient
	bucket string
	log    zerolog.Logger
}

// New connects to the object store described by cfg and makes sure the bucket
// exists.
func New(ctx context.Context, cfg config.MinIOConfig, log zerolog.Logger) (*Archive, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("archive endpoint is not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return newArchive(ctx, client, cfg.Bucket, log)
}

func newArchive(ctx context.Context, client objectClient, bucket string, log zerolog.Logger) (*Archive, error) {
	if bucket == "" {
		bucket = config.DefaultMinIOBucket
	}
	a := &Archive{
		client: client,
		bucket: bucket,
		log:    log.With().Str("component", "archive").Str("bucket", bucket).Logger(),
	}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	a.log.Info().Msg("creating archive bucket")
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// DocumentKey is the object name of the original document of analysis id.
func DocumentKey(id uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("resume/%s/original%s", id, ext)
}

// ResultKey is the object name of the JSON result of analysis id.
func ResultKey(id uuid.UUID) string {
	return fmt.Sprintf("resume/%s/analysis.json", id)
}

// PutDocument stores the original document and returns its object name.
func (a *Archive) PutDocument(ctx context.Context, id uuid.UUID, fileName, contentType string, document []byte) (string, error) {
	key := DocumentKey(id, fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return key, a.put(ctx, key, contentType, document)
}

// PutResult stores data as JSON and returns its object name.
func (a *Archive) PutResult(ctx context.Context, data *types.ResumeData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("no analysis to archive")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}
	key := ResultKey(data.ID)
	return key, a.put(ctx, key, "application/json", payload)
}

func (a *Archive) put(ctx context.Context, key, contentType string, data []byte) error {
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", a.bucket, key, err)
	}
	a.log.Debug().Str("key", key).Int64("size", info.Size).Msg("archived object")
	return nil
}
