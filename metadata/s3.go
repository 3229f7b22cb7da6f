package metadata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/repository"
)

// S3API is the subset of the S3 client used to read repository files.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Transport reads metadata from s3://bucket/prefix repositories.
type S3Transport struct {
	once           sync.Once
	loadErr        error
	api            S3API
	region         string
	endpoint       string
	forcePathStyle bool
}

// S3Option configures an S3Transport.
type S3Option func(*S3Transport)

// WithS3API uses the given client instead of one built from the default
// AWS configuration.
func WithS3API(api S3API) S3Option {
	return func(t *S3Transport) {
		t.api = api
	}
}

// WithS3Region overrides the AWS region.
func WithS3Region(region string) S3Option {
	return func(t *S3Transport) {
		t.region = region
	}
}

// WithS3Endpoint points the client at an S3 compatible endpoint and enables
// path-style addressing, as LocalStack and MinIO require.
func WithS3Endpoint(endpoint string) S3Option {
	return func(t *S3Transport) {
		t.endpoint = endpoint
		t.forcePathStyle = true
	}
}

// NewS3Transport creates an S3 transport. Without WithS3API the AWS
// configuration is loaded on first use.
func NewS3Transport(opts ...S3Option) *S3Transport {
	t := &S3Transport{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// client returns the configured API, loading the AWS configuration once.
func (t *S3Transport) client(ctx context.Context) (S3API, error) { //nolint:ireturn // mockable client
	t.once.Do(func() {
		if t.api != nil {
			return
		}

		var loadOpts []func(*config.LoadOptions) error
		if t.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(t.region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			t.loadErr = errors.Wrap(err, errors.CodeInvalidConfig, "failed to load AWS config")
			return
		}
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}

		t.api = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if t.endpoint != "" {
				o.BaseEndpoint = aws.String(t.endpoint)
			}
			o.UsePathStyle = t.forcePathStyle
		})
	})
	if t.loadErr != nil {
		return nil, t.loadErr
	}
	return t.api, nil
}

// Fetch implements Transport.
func (t *S3Transport) Fetch(ctx context.Context, remote repository.Remote, p string) ([]byte, error) {
	u, err := url.Parse(remote.URL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid s3 repository url")
	}
	bucket := u.Host
	if bucket == "" {
		return nil, errors.Newf(errors.CodeInvalidInput, "s3 repository %q has no bucket", remote.ID)
	}
	key := strings.TrimLeft(path.Join(u.Path, p), "/")

	api, err := t.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, t.handleError(err, bucket, key)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNetwork, "failed to read s3 object",
			map[string]interface{}{"bucket": bucket, "key": key})
	}
	return data, nil
}

func (t *S3Transport) handleError(err error, bucket, key string) error {
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return fmt.Errorf("s3.get %s/%s: %w", bucket, key, ErrNotFound)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("s3.get %s/%s: %w", bucket, key, ErrNotFound)
		case "AccessDenied", "Forbidden":
			return errors.WrapWithContext(err, errors.CodeUnauthorized, "s3 access denied",
				map[string]interface{}{"bucket": bucket, "key": key})
		}
	}
	return errors.WrapWithContext(err, errors.CodeNetwork, "s3 get object failed",
		map[string]interface{}{"bucket": bucket, "key": key})
}
