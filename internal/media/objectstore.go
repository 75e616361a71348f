package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/desertthunder/sonic57/internal/shared"
)

// Uploader stores a media object and returns the URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// ObjectStore uploads media to an S3-compatible bucket.
type ObjectStore struct {
	uploader *s3manager.Uploader
	client   *s3.S3
	cfg      shared.StorageConfig
}

// NewObjectStore builds a session from cfg. A custom endpoint switches to
// path-style addressing for MinIO and similar servers.
func NewObjectStore(cfg shared.StorageConfig) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", shared.ErrObjectStoreConfig)
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrObjectStoreConfig, err)
	}

	return &ObjectStore{
		uploader: s3manager.NewUploader(sess),
		client:   s3.New(sess),
		cfg:      cfg,
	}, nil
}

// Upload writes body under a fresh key and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := o.objectKey(name, contentType)

	input := &s3manager.UploadInput{
		Bucket: aws.String(o.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := o.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", shared.ErrStorage, key, err)
	}
	return o.URL(key), nil
}

// Delete removes key from the bucket.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// URL returns where key can be fetched: the configured public base, the
// path-style endpoint, or the virtual-hosted AWS address.
func (o *ObjectStore) URL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case o.cfg.PublicURL != "":
		return strings.TrimRight(o.cfg.PublicURL, "/") + "/" + escaped
	case o.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(o.cfg.Endpoint, "/"), o.cfg.Bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", o.cfg.Bucket, o.cfg.Region, escaped)
	}
}

func (o *ObjectStore) objectKey(name, contentType string) string {
	ext := ExtensionFor(contentType)
	if ext == "" {
		if i := strings.LastIndex(name, "."); i >= 0 {
			ext = strings.ToLower(name[i:])
		}
	}
	return o.cfg.Prefix + shared.GenerateID() + ext
}
