package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/spigell/resume-advisor/internal/extraction"
)

const s3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used for remote résumés.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config describes how to reach the bucket store.
type S3Config struct {
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for R2 or MinIO.
	Endpoint string
}

// NewS3Client builds an S3 client from the default credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := make([]func(*config.LoadOptions) error, 0, 1)
	if region := strings.TrimSpace(cfg.Region); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// IsS3Path reports whether path points at an object store.
func IsS3Path(path string) bool {
	return strings.HasPrefix(strings.ToLower(path), s3Scheme)
}

func parseS3Path(path string) (bucket, key string, ok bool) {
	rest := path[len(s3Scheme):]
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func (i *Ingestor) readS3(ctx context.Context, path string) ([]byte, *extraction.Result) {
	bucket, key, ok := parseS3Path(path)
	if !ok {
		return nil, failure(extraction.KindInvalid, nil, "Invalid object path '%s'. Expected s3://bucket/key.", path)
	}

	if i.s3 == nil {
		return nil, failure(extraction.KindInvalid, nil, "Cannot read '%s': object storage is not configured.", path)
	}

	out, err := i.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, failure(extraction.KindNotFound, err, "File not found at '%s'. Please check the path and try again.", path)
		}
		return nil, failure(extraction.KindConnection, err, "Could not download '%s': %v", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, failure(extraction.KindConnection, err, "Could not download '%s': %v", path, err)
	}

	return data, nil
}
