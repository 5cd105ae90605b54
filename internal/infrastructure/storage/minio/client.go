// Package minio stores serialized statement documents in S3-compatible
// object storage.
package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// objectAPI is the slice of the minio client the engine uses. Tests
// substitute a fake.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Client wraps the minio SDK with the engine's bucket and logging.
type Client struct {
	api           objectAPI
	bucket        string
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewClient connects to object storage and ensures the statement bucket
// exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("minio")

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create object storage client")
	}

	c := &Client{api: api, bucket: cfg.Bucket, presignExpiry: cfg.PresignExpiry, logger: log}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("object storage ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket))
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket")
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket")
	}
	return nil
}

// PutJSON uploads a JSON document and returns its storage locator.
func (c *Client) PutJSON(ctx context.Context, objectName string, data []byte) (string, error) {
	_, err := c.api.PutObject(ctx, c.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload object")
	}
	return "s3://" + c.bucket + "/" + objectName, nil
}

// PresignGet produces a time-limited download URL for an object.
func (c *Client) PresignGet(ctx context.Context, objectName string) (string, error) {
	u, err := c.api.PresignedGetObject(ctx, c.bucket, objectName, c.presignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign object")
	}
	return u.String(), nil
}
