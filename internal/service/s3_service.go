package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/config"
)

// S3Putter is the subset of the S3 client used for uploads.
type S3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Service stores generated documents in a bucket.
type S3Service struct {
	client        S3Putter
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
}

// NewS3Service builds an S3Service from config. Static credentials are used
// when both keys are set; otherwise the default AWS chain applies. A custom
// endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ServiceWithClient(client, cfg), nil
}

// NewS3ServiceWithClient wraps an existing client.
func NewS3ServiceWithClient(client S3Putter, cfg *config.S3Config) *S3Service {
	return &S3Service{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
}

// Put uploads data under key and returns its object URL.
func (s *S3Service) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("S3 upload failed")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	log.Info().Str("key", key).Msg("Successfully uploaded to S3")
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL for key.
func (s *S3Service) ObjectURL(key string) string {
	switch {
	case s.publicBaseURL != "":
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
}
