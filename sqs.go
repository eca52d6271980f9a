package sqsextended

import (
	"context"
	"errors"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/sirupsen/logrus"
	"github.com/vinujohn/sqsextended/internal/messages"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Client wraps an AWS SQS client and an AWS S3 client. Message bodies over the configured size
// threshold are stored in S3 and replaced in the queue by a pointer to the stored object. Client is
// safe for concurrent use.
type Client struct {
	*extender
	sqsClient SQSClient
}

// New creates a Client. A nil cfg uses the defaults of NewConfig, which leave no bucket configured:
// such a client can receive and delete offloaded messages but not send them. With
// WithBucketVerification, New checks that the configured bucket exists.
func New(sqsClient SQSClient, s3Client S3Client, cfg *Config) (*Client, error) {
	ext, err := newExtender(s3Client, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		extender:  ext,
		sqsClient: sqsClient,
	}, nil
}

// SendMessage calculates the message size from `params` and determines if the configured threshold
// is exceeded. If so, the body is uploaded to AWS S3 and a pointer to it is sent to AWS SQS instead,
// together with a reserved attribute holding the original body size. `params` is never modified.
//
// Note that this function's signature matches that of the AWS SQS SDK's SendMessage function.
func (c *Client) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	const op = "SendMessage"

	ctx, span := c.startSpan(ctx, op)
	defer span.End()
	log := c.log.WithField("method", op)

	bucket, ok := c.cfg.BucketName()
	if !ok {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoBucketName})
	}
	if params == nil || params.MessageBody == nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoMessageBody})
	}

	// normalize message attributes
	msgAttributes := messages.MapFromSqsMessageAttributeValues(params.MessageAttributes)
	log = log.WithFields(c.loggingFields(msgAttributes))

	size := messages.MessageSize(params.MessageBody, msgAttributes)
	offload := messages.ShouldOffload(c.cfg.alwaysOffload, size, c.cfg.messageSizeThreshold)
	span.SetAttributes(attribute.Bool("sqsextended.offloaded", offload))
	log = log.WithFields(logrus.Fields{"message_size": size.Total(), "offloaded": offload})

	if err := c.checkAttributes(msgAttributes, offload); err != nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindAttributeBuild, Err: err})
	}

	c.queueSizeCheck(log, bucket, size, offload)

	input := *params
	if offload {
		pointer, ferr := c.offload(ctx, op, bucket, *params.MessageBody)
		if ferr != nil {
			return nil, c.fail(span, log, ferr)
		}

		input.MessageBody = aws.String(pointer)
		input.MessageAttributes = messages.MapToSqsMessageAttributeValues(c.withReservedAttribute(msgAttributes, *params.MessageBody))
	}

	out, err := c.sqsClient.SendMessage(ctx, &input, optFns...)
	if err != nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindSend, Err: err})
	}

	log.Debug("message sent")

	return out, nil
}

// ReceiveMessage determines for every received message whether its body was stored in AWS S3. Such
// bodies are downloaded and put back in place, and the receipt handle is replaced by one that also
// carries the S3 bucket and key, so that DeleteMessage can remove the object afterwards. All message
// attributes are always requested. Messages that were not offloaded are returned unchanged and the
// batch order is kept.
//
// What happens when a message cannot be resolved depends on the configured FailurePolicy.
//
// Note that this function's signature matches that of the AWS SQS SDK's ReceiveMessage function.
func (c *Client) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	const op = "ReceiveMessage"

	ctx, span := c.startSpan(ctx, op)
	defer span.End()
	log := c.log.WithField("method", op)

	var input sqs.ReceiveMessageInput
	if params != nil {
		input = *params
	}
	input.MessageAttributeNames = withAllAttributes(input.MessageAttributeNames)

	out, err := c.sqsClient.ReceiveMessage(ctx, &input, optFns...)
	if err != nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindReceive, Err: err})
	}
	if out == nil {
		return out, nil
	}

	offloaded, failures, ferr := c.resolveMessages(ctx, log, out.Messages)
	span.SetAttributes(attribute.Int("sqsextended.offloaded_count", offloaded))
	if ferr != nil {
		return nil, c.fail(span, log, ferr)
	}

	if len(failures) > 0 {
		err := &ReceiveError{Failures: failures}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	return out, nil
}

// resolveMessages rewrites the offloaded messages of msgs in place. Under AbortBatch the first
// failure is returned and msgs must be discarded. Under CollectErrors failing messages are left
// untouched and reported.
func (c *Client) resolveMessages(ctx context.Context, log logrus.FieldLogger, msgs []types.Message) (int, []MessageFailure, *Error) {
	const op = "ReceiveMessage"

	abort := c.cfg.receiveFailurePolicy == AbortBatch
	errs := make([]*Error, len(msgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.receiveConcurrency)

	offloaded := 0
	for i := range msgs {
		i := i
		msg := msgs[i]

		hasAttribute := func(name string) bool {
			_, ok := msg.MessageAttributes[name]
			return ok
		}
		if !c.isOffloaded(hasAttribute) {
			continue
		}

		msgLog := log.WithFields(c.loggingFields(messages.MapFromSqsMessageAttributeValues(msg.MessageAttributes)))
		if msg.MessageId != nil {
			msgLog = msgLog.WithField("message_id", *msg.MessageId)
		}

		if msg.Body == nil || msg.ReceiptHandle == nil {
			msgLog.Warn("offloaded message has no body or receipt handle, returning it as is")
			continue
		}
		offloaded++

		g.Go(func() error {
			if err := gctx.Err(); err != nil && abort {
				return err
			}

			payload, pointer, ferr := c.retrieve(gctx, op, *msg.Body)
			if ferr != nil {
				errs[i] = ferr
				if abort {
					return ferr
				}

				c.metrics.Failed(ferr.Kind.String())
				msgLog.WithField("kind", ferr.Kind.String()).Warnf("unable to resolve offloaded message: %+v", ferr.Err)
				return nil
			}

			msg.Body = aws.String(payload)
			msg.ReceiptHandle = aws.String(messages.EncodeReceiptHandle(pointer.BucketName, pointer.Key, *msg.ReceiptHandle))
			msgs[i] = msg

			msgLog.Debug("offloaded message resolved")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var ferr *Error
		if errors.As(err, &ferr) {
			return offloaded, nil, ferr
		}
		// canceled by the caller before any fetch failed
		return offloaded, nil, &Error{Op: op, Kind: KindDownload, Err: err}
	}

	var failures []MessageFailure
	for i, e := range errs {
		if e == nil {
			continue
		}
		failures = append(failures, MessageFailure{
			Index:     i,
			MessageId: aws.ToString(msgs[i].MessageId),
			Err:       e,
		})
	}

	return offloaded, failures, nil
}

// DeleteMessage deletes a message from AWS SQS and, when the receipt handle came from ReceiveMessage
// for an offloaded message, its body from AWS S3. The S3 object is only deleted once the queue
// delete succeeded. If that object delete fails, the queue output is returned together with an
// error of KindStorageDelete.
//
// Note that this function's signature matches that of the AWS SQS SDK's DeleteMessage function.
func (c *Client) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	const op = "DeleteMessage"

	ctx, span := c.startSpan(ctx, op)
	defer span.End()
	log := c.log.WithField("method", op)

	if params == nil || aws.ToString(params.ReceiptHandle) == "" {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoReceiptHandle})
	}

	input := *params
	bucket, key, handle, err := messages.DecodeReceiptHandle(*params.ReceiptHandle)
	extended := err == nil
	if extended {
		input.ReceiptHandle = aws.String(handle)
		log = log.WithFields(logrus.Fields{"bucket": bucket, "key": key})
	}
	span.SetAttributes(attribute.Bool("sqsextended.offloaded", extended))

	out, err := c.sqsClient.DeleteMessage(ctx, &input, optFns...)
	if err != nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindDelete, Err: err})
	}

	if !extended {
		return out, nil
	}

	if c.cfg.skipPayloadDeletion {
		log.Debug("keeping offloaded payload")
		return out, nil
	}

	if err := c.store.Delete(ctx, bucket, key); err != nil {
		return out, c.fail(span, log, &Error{Op: op, Kind: KindStorageDelete, Err: err})
	}
	c.metrics.Deleted()

	log.Debug("offloaded payload deleted")

	return out, nil
}

// ChangeMessageVisibility forwards the original receipt handle when given one returned by
// ReceiveMessage for an offloaded message. AWS S3 is not called.
//
// Note that this function's signature matches that of the AWS SQS SDK's ChangeMessageVisibility function.
func (c *Client) ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	const op = "ChangeMessageVisibility"

	ctx, span := c.startSpan(ctx, op)
	defer span.End()
	log := c.log.WithField("method", op)

	if params == nil || aws.ToString(params.ReceiptHandle) == "" {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindUsage, Err: ErrNoReceiptHandle})
	}

	input := *params
	if _, _, handle, err := messages.DecodeReceiptHandle(*params.ReceiptHandle); err == nil {
		input.ReceiptHandle = aws.String(handle)
		span.SetAttributes(attribute.Bool("sqsextended.offloaded", true))
	}

	out, err := c.sqsClient.ChangeMessageVisibility(ctx, &input, optFns...)
	if err != nil {
		return nil, c.fail(span, log, &Error{Op: op, Kind: KindChangeVisibility, Err: err})
	}

	return out, nil
}

// withAllAttributes makes sure every message attribute is requested, reserved ones included.
func withAllAttributes(names []string) []string {
	if slices.Contains(names, allMessageAttributes) || slices.Contains(names, allMessageAttributesPattern) {
		return names
	}

	return []string{allMessageAttributes}
}
