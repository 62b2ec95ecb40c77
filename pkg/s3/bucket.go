package bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type InterfaceBucket interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Bucket struct {
	client s3iface.S3API
	name   string
}

func NewBucket(accessKeyID, secretAccessKey, region, name string) (*Bucket, error) {
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, errors.New("AWS credentials or region are not set")
	}
	if name == "" {
		return nil, errors.New("AWS bucket name is not set")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKeyID, secretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return NewBucketWithClient(s3.New(sess), name), nil
}

func NewBucketWithClient(client s3iface.S3API, name string) *Bucket {
	return &Bucket{client: client, name: name}
}

// Upload stores body under key and returns the object's public URL.
func (b *Bucket) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.name, key), nil
}
