package minio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"insurance-ledger/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ProductDocumentBucket holds the provider-uploaded product documents whose
// hashes proposals carry.
const ProductDocumentBucket = "product-documents"

// Client wraps the MinIO client used for product document storage.
type Client struct {
	client *minio.Client
}

func NewClient(cfg config.MinioConfig) (*Client, error) {
	endpoint := strings.TrimPrefix(cfg.MinioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		isSecure = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	c := &Client{client: minioClient}
	if err := c.ensureBucket(context.Background(), ProductDocumentBucket); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// PutObject stores an object and returns its size.
func (c *Client) PutObject(ctx context.Context, bucket, objectName, contentType string, data []byte) (int64, error) {
	info, err := c.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("failed to store object %s/%s: %w", bucket, objectName, err)
	}
	return info.Size, nil
}
