package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/portfolio-api/internal/config"
)

// S3 stores files in an S3-compatible bucket (AWS, Cloudflare R2, MinIO).
type S3 struct {
	cfg    config.S3Config
	client *s3.Client
	upldr  *manager.Uploader
}

// NewS3 builds the client. Static credentials are used when configured;
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config, logger *zerolog.Logger) (*S3, error) {
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if logger != nil {
		logger.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("using s3 upload storage")
	}

	return &S3{
		cfg:    cfg,
		client: client,
		upldr:  manager.NewUploader(client, func(u *manager.Uploader) { u.PartSize = 8 * 1024 * 1024 }),
	}, nil
}

func (s *S3) key(name string) string {
	name = path.Base(name)
	if s.cfg.KeyPrefix != "" {
		return path.Join(s.cfg.KeyPrefix, name)
	}
	return name
}

func (s *S3) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.upldr.Upload(ctx, input); err != nil {
		return errors.Wrap(err, "upload object")
	}
	return nil
}

// Delete checks existence first: DeleteObject succeeds for missing keys.
func (s *S3) Delete(ctx context.Context, name string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var re *smithyhttp.ResponseError
		if errors.As(err, &re) && re.Response.StatusCode == http.StatusNotFound {
			return ErrNotExist
		}
		return errors.Wrap(err, "head object")
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
	})
	return errors.Wrap(err, "delete object")
}

func (s *S3) URL(name string) string {
	key := s.key(name)
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	return PublicPrefix + key
}

func (s *S3) Name() string { return "s3" }
