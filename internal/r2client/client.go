// Package r2client talks to Cloudflare R2 through the S3 API. The advisor
// only needs single-object operations: fine-tuned artifacts are fetched by
// key and ETag, and knowledge snapshots are published as zstd objects.
package r2client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is wrapped by every operation on a missing key.
var ErrNotFound = errors.New("r2client: object not found")

// Config holds R2 credentials. Endpoint is the account URL,
// https://<account-id>.r2.cloudflarestorage.com.
type Config struct {
	Endpoint    string
	AccessKeyID string
	SecretKey   string
	BucketName  string
}

// Client is bound to one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New builds a path-style S3 client for R2.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.BucketName == "" {
		return nil, errors.New("r2client: endpoint, credentials and bucket are required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithCredentialsProvider(creds), config.WithRegion("auto"))
	if err != nil {
		return nil, fmt.Errorf("r2client: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &Client{s3: client, bucket: cfg.BucketName}, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload writes body under key and returns the new ETag.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	in := &s3.PutObjectInput{Bucket: &c.bucket, Key: &key, Body: body}
	if contentType != "" {
		in.ContentType = &contentType
	}
	out, err := c.s3.PutObject(ctx, in)
	if err != nil {
		return "", opError("upload", key, err)
	}
	return etagOf(out.ETag), nil
}

// Download opens key for reading. The caller closes the body.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		return nil, "", opError("download", key, err)
	}
	return out.Body, etagOf(out.ETag), nil
}

// HeadObject returns key's ETag without fetching the body.
func (c *Client) HeadObject(ctx context.Context, key string) (string, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		return "", opError("head", key, err)
	}
	return etagOf(out.ETag), nil
}

func opError(op, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("r2client: %s %q: %w", op, key, err)
}

// etagOf strips the quotes S3 puts around ETags.
func etagOf(etag *string) string {
	return strings.Trim(aws.ToString(etag), `"`)
}

// isNotFound recognises the typed S3 errors, R2's bare error codes, and a
// 404 on HEAD, which carries no body to decode.
func isNotFound(err error) bool {
	var (
		noKey    *types.NoSuchKey
		notFound *types.NotFound
		apiErr   smithy.APIError
		respErr  *smithyhttp.ResponseError
	)
	switch {
	case errors.As(err, &noKey), errors.As(err, &notFound):
		return true
	case errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound"):
		return true
	case errors.As(err, &respErr):
		return respErr.HTTPStatusCode() == http.StatusNotFound
	}
	return false
}
