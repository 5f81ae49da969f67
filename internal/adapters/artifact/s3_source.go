package artifact

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mikey/sms-spam-detector/internal/ports"
)

// ObjectGetter is the subset of the S3 API used to fetch artifacts
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source opens artifacts stored as s3://bucket/key objects
type S3Source struct {
	client ObjectGetter
}

var _ ports.ArtifactSource = (*S3Source)(nil)

// NewS3Source creates a new S3 artifact source
func NewS3Source(client ObjectGetter) *S3Source {
	return &S3Source{client: client}
}

// Supports accepts s3:// URIs
func (s *S3Source) Supports(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Open streams the object body
func (s *S3Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	return out.Body, nil
}

func parseS3URI(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location: %q", location)
	}
	return bucket, key, nil
}
