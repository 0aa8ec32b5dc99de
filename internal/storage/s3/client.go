package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"projecthub/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	emptyAWSSessionToken = ""

	errFailedCreateAWSSessionFmt             = "failed to create AWS session: %w"
	errFailedPutObjectFmt                    = "failed to put object: %w"
	errFailedGeneratePresignedDownloadURLFmt = "failed to generate presigned download URL: %w"
	errFailedDeleteObjectFmt                 = "failed to delete object: %w"
)

// Client writes export objects into one bucket and hands out presigned GETs.
type Client struct {
	svc                *s3.S3
	bucket             string
	presignedURLExpiry time.Duration
}

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &Client{
		svc:                s3.New(sess),
		bucket:             cfg.ExportBucket,
		presignedURLExpiry: cfg.ExportURLExpiry,
	}, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) PutObject(ctx context.Context, objectKey string, body io.ReadSeeker, contentType string) error {
	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf(errFailedPutObjectFmt, err)
	}
	return nil
}

// PresignDownload returns a GET URL for objectKey and the moment it stops working.
func (c *Client) PresignDownload(ctx context.Context, objectKey string) (string, time.Time, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
	})
	req.SetContext(ctx)

	url, err := req.Presign(c.presignedURLExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf(errFailedGeneratePresignedDownloadURLFmt, err)
	}

	return url, time.Now().Add(c.presignedURLExpiry), nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}
	return nil
}
