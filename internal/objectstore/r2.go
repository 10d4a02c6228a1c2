// Package objectstore uploads dish photos to an S3-compatible bucket
// (Cloudflare R2 in production) or keeps them in memory.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var _ domain.ImageStore = (*R2Store)(nil)

// CacheControl is sent with every uploaded object.
const CacheControl = "max-age=3600"

// R2Options configures the bucket client.
type R2Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// objectAPI is the slice of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Store uploads objects with PutObject and returns their public URL.
type R2Store struct {
	client  objectAPI
	bucket  string
	baseURL string
	log     *logger.Logger
}

// NewR2Store builds a client for the given endpoint with static
// credentials and path-style addressing.
func NewR2Store(ctx context.Context, opts R2Options, log *logger.Logger) (*R2Store, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("r2 endpoint and bucket are required")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return newR2Store(client, opts.Bucket, baseURL, log), nil
}

func newR2Store(client objectAPI, bucket, baseURL string, log *logger.Logger) *R2Store {
	return &R2Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Put uploads body under key and returns its public URL.
func (r *R2Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(CacheControl),
	})
	if err != nil {
		r.log.Error("upload failed: bucket=%s key=%s: %v", r.bucket, key, err)
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	url := fmt.Sprintf("%s/%s", r.baseURL, key)
	r.log.Debug("uploaded %s", url)
	return url, nil
}

// Delete removes key from the bucket.
func (r *R2Store) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	r.log.Debug("deleted %s/%s", r.bucket, key)
	return nil
}
