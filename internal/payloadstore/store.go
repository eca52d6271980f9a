// Package payloadstore reads and writes offloaded message bodies in AWS S3.
package payloadstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	ErrStreamRead = errors.New("unable to read object body")
	ErrNotUTF8    = errors.New("object body is not valid utf-8")
)

// S3API is the part of the AWS S3 client used to store payloads. *s3.Client satisfies it.
type S3API interface {
	s3manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type Store struct {
	s3Client S3API
	uploader *s3manager.Uploader
}

func New(s3Client S3API) *Store {
	return &Store{
		s3Client: s3Client,
		uploader: s3manager.NewUploader(s3Client),
	}
}

// Put uploads payload to bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key, payload string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("unable to upload payload to s3. %w", err)
	}

	return nil
}

// Get downloads the object at bucket/key and returns it as text. Failures reading the body wrap
// ErrStreamRead and bodies that are not UTF-8 wrap ErrNotUTF8.
func (s *Store) Get(ctx context.Context, bucket, key string) (string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("unable to get payload from s3 (%s/%s). %w", bucket, key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("%w (%s/%s): %w", ErrStreamRead, bucket, key, err)
	}

	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w (%s/%s)", ErrNotUTF8, bucket, key)
	}

	return string(b), nil
}

func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete payload from s3 (%s/%s). %w", bucket, key, err)
	}

	return nil
}

// BucketExists checks whether a bucket exists and is accessible with the store's credentials.
func (s *Store) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return BucketExists(ctx, s.s3Client, bucket)
}
