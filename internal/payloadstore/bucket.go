package payloadstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// BucketExists checks whether a bucket exists in the current account.
// TODO: a bucket owned by another account answers 403 here even when it is writable; HeadBucket
// with ExpectedBucketOwner would tell the two apart.
func BucketExists(ctx context.Context, s3Client HeadBucketAPI, bucketName string) (bool, error) {
	_, err := s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}

	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		return false, fmt.Errorf("unable to check if bucket exists. %w", apiError)
	}

	return false, fmt.Errorf("unable to check if bucket exists. %w", err)
}
