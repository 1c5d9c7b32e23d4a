package backup

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Settings locate the snapshot bucket.
type S3Settings struct {
	User         string
	Password     string
	Region       string
	BaseEndpoint string
}

// NewS3Client builds a client for AWS or a MinIO-style endpoint. Static
// credentials are used when User is set, otherwise the default AWS chain.
func NewS3Client(ctx context.Context, st S3Settings) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(st.Region)}
	if st.User != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(st.User, st.Password, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if st.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(st.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}
