package sqsextended

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vinujohn/sqsextended/internal/messages"
	"github.com/vinujohn/sqsextended/internal/metrics"
	"github.com/vinujohn/sqsextended/internal/payloadstore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SQSClient is the part of the AWS SQS client wrapped by Client. *sqs.Client satisfies it.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// SNSClient is the part of the AWS SNS client wrapped by SnsClient. *sns.Client satisfies it.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// S3Client is the part of the AWS S3 client used to store offloaded bodies: the calls made by the
// s3 upload manager plus GetObject, DeleteObject and HeadBucket. *s3.Client satisfies it.
type S3Client = payloadstore.S3API

// extender holds what Client and SnsClient share: configuration, the payload store and the
// logging, tracing and metrics handles.
type extender struct {
	cfg     *Config
	store   *payloadstore.Store
	log     logrus.FieldLogger
	tracer  trace.Tracer
	metrics *metrics.Collector
}

func newExtender(s3Client S3Client, cfg *Config) (*extender, error) {
	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}

	store := payloadstore.New(s3Client)

	if bucket, ok := cfg.BucketName(); ok && cfg.verifyBucket {
		exists, err := store.BucketExists(context.Background(), bucket)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
	}

	return &extender{
		cfg:     cfg,
		store:   store,
		log:     cfg.logger,
		tracer:  cfg.tracerProvider.Tracer(tracerName),
		metrics: metrics.New(cfg.registerer),
	}, nil
}

func (e *extender) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "sqsextended."+op, trace.WithSpanKind(trace.SpanKindClient))
}

func (e *extender) fail(span trace.Span, log logrus.FieldLogger, err *Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.metrics.Failed(err.Kind.String())

	log.WithField("kind", err.Kind.String()).Errorf("Error: %+v", err.Err)

	return err
}

func (e *extender) loggingFields(attrs map[string]messages.MessageAttributeValue) logrus.Fields {
	fields := logrus.Fields{}

	for _, name := range e.cfg.logAttributeNames {
		if v, ok := attrs[name]; ok && v.StringValue != nil {
			fields[name] = *v.StringValue
		}
	}

	return fields
}

// checkAttributes rejects caller attributes that would clash with the reserved attribute or leave
// no room for it.
func (e *extender) checkAttributes(attrs map[string]messages.MessageAttributeValue, offloading bool) error {
	for _, name := range e.cfg.reservedAttributeNames {
		if _, ok := attrs[name]; ok {
			return fmt.Errorf("%w: %s", ErrReservedAttributeName, name)
		}
	}

	if offloading && len(attrs) > MaxAllowedAttributes {
		return fmt.Errorf("%w: %d", ErrTooManyAttributes, len(attrs))
	}

	return nil
}

// isOffloaded reports whether any reserved attribute name is present.
func (e *extender) isOffloaded(hasAttribute func(name string) bool) bool {
	for _, name := range e.cfg.reservedAttributeNames {
		if hasAttribute(name) {
			return true
		}
	}

	return false
}

// offload writes body to the bucket and returns the pointer to send in its place.
func (e *extender) offload(ctx context.Context, op, bucket, body string) (string, *Error) {
	key := e.cfg.objectKey(uuid.NewString())

	pointer, err := messages.EncodePointer(messages.Pointer{
		BucketName: bucket,
		Key:        key,
		Class:      e.cfg.pointerClass,
	})
	if err != nil {
		return "", &Error{Op: op, Kind: KindAttributeBuild, Err: err}
	}

	if err := e.store.Put(ctx, bucket, key, body); err != nil {
		return "", &Error{Op: op, Kind: KindUpload, Err: err}
	}

	e.metrics.Offloaded(op, int64(len(body)))

	return pointer, nil
}

// retrieve resolves a pointer body to the stored payload.
func (e *extender) retrieve(ctx context.Context, op, body string) (string, messages.Pointer, *Error) {
	pointer, err := messages.DecodePointer(body)
	if err != nil {
		return "", messages.Pointer{}, &Error{Op: op, Kind: KindPointerDecode, Err: err}
	}

	payload, err := e.store.Get(ctx, pointer.BucketName, pointer.Key)
	if err != nil {
		kind := KindDownload
		switch {
		case errors.Is(err, payloadstore.ErrStreamRead):
			kind = KindStreamRead
		case errors.Is(err, payloadstore.ErrNotUTF8):
			kind = KindUTF8Decode
		}
		return "", messages.Pointer{}, &Error{Op: op, Kind: kind, Err: err}
	}

	e.metrics.Fetched()

	return payload, pointer, nil
}

// queueSizeCheck warns when a single message, as it will sit in the queue, is larger than the
// per-message batch threshold.
func (e *extender) queueSizeCheck(log logrus.FieldLogger, bucket string, size messages.Size, offloaded bool) {
	if offloaded {
		size = size.ToExtendedSize(e.cfg.basePointerSize+len(bucket), e.cfg.baseAttributeSize)
	}

	if size.Total() > e.cfg.batchMessageSizeThreshold {
		log.WithField("queue_message_size", size.Total()).Warn("queued message size exceeds the per-message batch size threshold")
	}
}

// withReservedAttribute returns a copy of attrs carrying the reserved attribute that marks body as
// offloaded.
func (e *extender) withReservedAttribute(attrs map[string]messages.MessageAttributeValue, body string) map[string]messages.MessageAttributeValue {
	ret := make(map[string]messages.MessageAttributeValue, len(attrs)+1)
	for k, v := range attrs {
		ret[k] = v
	}

	ret[e.cfg.reservedAttributeNames[0]] = messages.MessageAttributeValue{
		DataType:    aws.String(numberDataType),
		StringValue: payloadSizeValue(body),
	}

	return ret
}

func payloadSizeValue(body string) *string {
	v := strconv.Itoa(len(body))
	return &v
}
