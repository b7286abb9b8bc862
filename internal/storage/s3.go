package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gratitude/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type s3Store struct {
	client    *s3.S3
	bucket    string
	publicURL string
}

// NewS3Store builds a Store for an S3-compatible bucket. Static
// credentials are used when configured, otherwise the default AWS chain.
func NewS3Store(cfg *config.Config) (Store, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrNotConfigured
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.S3Region),
		S3ForcePathStyle: aws.Bool(cfg.S3UsePathStyle || cfg.S3Endpoint != ""),
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
	}
	if cfg.S3AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &s3Store{
		client:    s3.New(sess),
		bucket:    cfg.S3Bucket,
		publicURL: publicBase(cfg),
	}, nil
}

func publicBase(cfg *config.Config) string {
	if cfg.S3PublicURL != "" {
		return cfg.S3PublicURL
	}
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

func (p *s3Store) putInput(obj PutObject) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(obj.Key),
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
	}
	if len(obj.Metadata) > 0 {
		input.Metadata = aws.StringMap(obj.Metadata)
	}
	return input
}

func (p *s3Store) PresignPut(ctx context.Context, obj PutObject) (string, error) {
	req, _ := p.client.PutObjectRequest(p.putInput(obj))
	req.SetContext(ctx)

	expires := obj.Expires
	if expires <= 0 {
		expires = PresignExpiry
	}
	url, err := req.Presign(expires)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", obj.Key, err)
	}
	return url, nil
}

func (p *s3Store) Put(ctx context.Context, obj PutObject, body io.ReadSeeker) error {
	input := p.putInput(obj)
	input.Body = body
	if _, err := p.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", obj.Key, err)
	}
	return nil
}

func (p *s3Store) Get(ctx context.Context, key string) (*Object, error) {
	out, err := p.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if out.Body == nil {
		return nil, ErrObjectNotFound
	}
	return &Object{
		Body:          out.Body,
		ContentType:   aws.StringValue(out.ContentType),
		ContentLength: aws.Int64Value(out.ContentLength),
	}, nil
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey
}

func (p *s3Store) PublicURL(key string) string {
	return p.publicURL + "/" + key
}
