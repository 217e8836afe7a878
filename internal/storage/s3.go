package storage

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob"
	"gocloud.dev/blob/s3blob"
)

// NewS3 creates an S3 client honoring env configuration for MinIO.
// Env support: AWS_REGION, AWS_ENDPOINT_URL_S3, AWS_S3_FORCE_PATH_STYLE.
func NewS3(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, EnvOptions), nil
}

// EnvOptions applies endpoint and path-style overrides from the environment.
func EnvOptions(o *s3.Options) {
	if ep := os.Getenv("AWS_ENDPOINT_URL_S3"); ep != "" {
		o.BaseEndpoint = aws.String(ep)
	}
	if strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true") {
		o.UsePathStyle = true
	}
}

func openS3(ctx context.Context, t Target) (*blob.Bucket, error) {
	client, err := NewS3(ctx)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucketV2(ctx, client, t.Bucket, nil)
}
