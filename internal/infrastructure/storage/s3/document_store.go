// Package s3 stores citizenship-document images in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultBucket is the bucket citizenship images are written to.
const DefaultBucket = "citizenship-images"

// Config captures the settings for the document bucket.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO/LocalStack
	// PublicBaseURL prefixes object keys in returned URLs. When empty the URL
	// is derived from Endpoint or the AWS virtual-host form.
	PublicBaseURL string
	UsePathStyle  bool
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// DocumentStore implements ports.DocumentStore on S3.
type DocumentStore struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewClient builds an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := s3.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		BaseEndpoint: awsCfg.BaseEndpoint,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts), nil
}

// NewDocumentStore returns a store writing to cfg.Bucket through client.
func NewDocumentStore(client objectAPI, cfg Config) *DocumentStore {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &DocumentStore{client: client, bucket: bucket, baseURL: publicBaseURL(cfg, bucket)}
}

// Upload writes body under key. An existing object with the same key is
// never replaced.
func (s *DocumentStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public address of key.
func (s *DocumentStore) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// Ping checks the bucket is reachable.
func (s *DocumentStore) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func publicBaseURL(cfg Config, bucket string) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
}
