package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sort"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// S3Store keeps blobs in an S3 bucket under an optional key prefix. A custom
// endpoint with path-style addressing covers MinIO and localstack setups.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store builds a client from the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg models.S3Storage) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.ConfigError("s3 storage requires a bucket", "storage.s3.bucket")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to load AWS configuration")
	}

	opts := s3.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = &cfg.Endpoint
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + key
}

// Upload implements Store.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte) error {
	objKey := s.objectKey(key)
	contentType := "application/json"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objKey,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return errors.StorageError(errors.ErrCodeStorageUpload, "failed to upload blob", key, err)
	}
	return nil
}

// Download implements Store.
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, error) {
	objKey := s.objectKey(key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &objKey,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.StorageError(errors.ErrCodeStorageNotFound, "blob not found", key, err)
		}
		return nil, errors.StorageError(errors.ErrCodeStorageDownload, "failed to download blob", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.StorageError(errors.ErrCodeStorageDownload, "failed to read blob body", key, err)
	}
	return data, nil
}

// List implements Store.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.objectKey(prefix)

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &fullPrefix,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.StorageError(errors.ErrCodeStorageList, "failed to list blobs", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			keys = append(keys, strings.TrimPrefix(*obj.Key, s.prefix))
		}
	}

	sort.Strings(keys)
	return keys, nil
}

// Delete implements Store.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	objKey := s.objectKey(key)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &objKey,
	})
	if err != nil {
		return errors.StorageError(errors.ErrCodeStorageUpload, "failed to delete blob", key, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	// GetObject against some S3-compatible stores reports NotFound instead
	var notFound *types.NotFound
	return stderrors.As(err, &notFound)
}
