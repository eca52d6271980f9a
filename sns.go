package sqsextended

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sirupsen/logrus"
	"github.com/vinujohn/sqsextended/internal/messages"
	"go.opentelemetry.io/otel/attribute"
)

type SnsClient struct {
	*extender
	snsClient SNSClient
}

// NewSnsClient creates an SnsClient. It takes the same configuration as New and with
// WithBucketVerification checks that the configured bucket exists.
func NewSnsClient(snsClient SNSClient, s3Client S3Client, cfg *Config) (*SnsClient, error) {
	ext, err := newExtender(s3Client, cfg)
	if err != nil {
		return nil, err
	}

	return &SnsClient{
		extender:  ext,
		snsClient: snsClient,
	}, nil
}

// PublishMessage will calculate the messages size from `params` and determine if the configured
// threshold is exceeded. If so, the message is saved in AWS S3 and a pointer to it is published to
// AWS SNS instead, using the same format as Client.SendMessage.
//
// Subscriptions to the AWS SNS topic used in this method should use 'Raw Message Delivery' as an
// option. This ensures that Client.ReceiveMessage can resolve the messages delivered to AWS SQS
// endpoints. Other endpoints like AWS Lambda can read the pointer with PointerFromBody and download
// the body from S3 directly.
//
// Note that this function's signature matches that of the AWS SNS SDK's Publish method.
func (client *SnsClient) PublishMessage(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	const op = "PublishMessage"

	ctx, span := client.startSpan(ctx, op)
	defer span.End()
	log := client.log.WithField("method", op)

	bucket, ok := client.cfg.BucketName()
	if !ok {
		return nil, client.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoBucketName})
	}
	if params == nil || params.Message == nil {
		return nil, client.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoMessageBody})
	}

	// normalize message attributes
	msgAttributes := messages.MapFromSnsMessageAttributeValues(params.MessageAttributes)
	log = log.WithFields(client.loggingFields(msgAttributes))

	size := messages.MessageSize(params.Message, msgAttributes)
	offload := messages.ShouldOffload(client.cfg.alwaysOffload, size, client.cfg.messageSizeThreshold)
	span.SetAttributes(attribute.Bool("sqsextended.offloaded", offload))
	log = log.WithFields(logrus.Fields{"message_size": size.Total(), "offloaded": offload})

	if err := client.checkAttributes(msgAttributes, offload); err != nil {
		return nil, client.fail(span, log, &Error{Op: op, Kind: KindAttributeBuild, Err: err})
	}

	input := *params
	if offload {
		pointer, ferr := client.offload(ctx, op, bucket, *params.Message)
		if ferr != nil {
			return nil, client.fail(span, log, ferr)
		}

		input.Message = aws.String(pointer)
		input.MessageAttributes = messages.MapToSnsMessageAttributeValues(client.withReservedAttribute(msgAttributes, *params.Message))
	}

	out, err := client.snsClient.Publish(ctx, &input, optFns...)
	if err != nil {
		return nil, client.fail(span, log, &Error{Op: op, Kind: KindPublish, Err: err})
	}

	log.Debug("message published")

	return out, nil
}
