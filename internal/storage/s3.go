// Package storage archives raw scraped judgment markdown in S3-compatible
// object storage (e.g., RustFS). The database stays the source of truth; the
// archive preserves the text exactly as scraped so a judgment can be
// reprocessed without hitting SAFLII again.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveConfig holds configuration for Archive
type ArchiveConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// Archive stores raw judgment documents keyed by judgment ID
type Archive struct {
	client *s3.Client
	bucket string
}

// NewArchive creates a new Archive with the given configuration
func NewArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	// Create custom resolver for S3-compatible endpoints
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	// Load AWS config
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with path-style addressing for S3-compatible services
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Archive{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// documentKey maps a judgment ID to its object key.
func documentKey(judgmentID string) string {
	return "judgments/" + judgmentID + ".md"
}

// PutDocument stores the raw markdown for a judgment
func (a *Archive) PutDocument(ctx context.Context, judgmentID, text string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(documentKey(judgmentID)),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/markdown"),
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to archive document %s: %w", judgmentID, err)
	}

	return nil
}

// GetDocument retrieves the raw markdown for a judgment
func (a *Archive) GetDocument(ctx context.Context, judgmentID string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(documentKey(judgmentID)),
	}

	output, err := a.client.GetObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document %s: %w", judgmentID, err)
	}
	defer output.Body.Close()

	text, err := io.ReadAll(output.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", judgmentID, err)
	}

	return string(text), nil
}

// DeleteDocument removes the archived markdown for a judgment
func (a *Archive) DeleteDocument(ctx context.Context, judgmentID string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(documentKey(judgmentID)),
	}

	if _, err := a.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", judgmentID, err)
	}

	return nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *Archive) EnsureBucket(ctx context.Context) error {
	// Check if bucket exists
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil // Bucket exists
	}

	// Create bucket
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}
