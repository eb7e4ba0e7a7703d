package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	pathpkg "path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// DefaultRegion is used when neither S3Config nor AWS_REGION names one.
const DefaultRegion = "us-east-1"

// S3Config configures the S3 client used for s3:// locations. Empty
// credentials fall back to AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY /
// AWS_SESSION_TOKEN.
type S3Config struct {
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle       bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty" yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" yaml:"secretAccessKey,omitempty"`
}

// NewS3Client builds an S3 client from cfg. A custom endpoint selects an
// S3-compatible store such as MinIO or R2.
func NewS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = DefaultRegion
	}
	opts := s3.Options{Region: region, UsePathStyle: cfg.PathStyle}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	id, secret, token := cfg.AccessKeyID, cfg.SecretAccessKey, ""
	if id == "" {
		id = os.Getenv("AWS_ACCESS_KEY_ID")
		secret = os.Getenv("AWS_SECRET_ACCESS_KEY")
		token = os.Getenv("AWS_SESSION_TOKEN")
	}
	if id != "" {
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     id,
					SecretAccessKey: secret,
					SessionToken:    token,
					Source:          "colgraph",
				}, nil
			}))
	}
	return s3.New(opts)
}

// S3Client is the subset of the S3 API used by S3Store. *s3.Client
// satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store implements FileStore on an S3 bucket. Paths map to object keys
// below an optional prefix.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 creates an S3-backed FileStore. Pass "" for no prefix.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) key(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	clean := pathpkg.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

func (s *S3Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	key, err := s.key(path)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("storage: s3://%s/%s: %w", s.bucket, key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// Write buffers the object and uploads it with a single PutObject on
// Close, so the request carries a content length and a seekable body.
func (s *S3Store) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	key, err := s.key(path)
	if err != nil {
		return nil, err
	}
	return &s3Upload{ctx: ctx, store: s, key: key}, nil
}

func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	key, err := s.key(path)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: head s3://%s/%s: %w", s.bucket, key, err)
	}
	return true, nil
}

type s3Upload struct {
	ctx    context.Context
	store  *S3Store
	key    string
	buf    bytes.Buffer
	closed bool
}

func (u *s3Upload) Write(p []byte) (int, error) {
	if u.closed {
		return 0, os.ErrClosed
	}
	return u.buf.Write(p)
}

func (u *s3Upload) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.store.bucket),
		Key:           aws.String(u.key),
		Body:          bytes.NewReader(u.buf.Bytes()),
		ContentLength: aws.Int64(int64(u.buf.Len())),
	}
	if ct := mime.TypeByExtension(pathpkg.Ext(u.key)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := u.store.client.PutObject(u.ctx, in); err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", u.store.bucket, u.key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var (
	_ FileStore = (*Local)(nil)
	_ FileStore = (*S3Store)(nil)
)
