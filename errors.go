package sqsextended

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

var (
	ErrNoBucketName          = errors.New("no bucket name configured")
	ErrNoMessageBody         = errors.New("message body is required")
	ErrNoReceiptHandle       = errors.New("receipt handle is required")
	ErrReservedAttributeName = errors.New("message attribute name is reserved")
	ErrTooManyAttributes     = fmt.Errorf("number of message attributes exceeds the allowed %d", MaxAllowedAttributes)
	ErrBucketNotFound        = errors.New("bucket does not exist or is not accessible")

	ErrInvalidThreshold     = errors.New("size threshold must be greater than 0")
	ErrNoReservedAttributes = errors.New("at least one non-empty reserved attribute name is required")
	ErrInvalidPointerClass  = errors.New("pointer class must not be empty")
	ErrInvalidKeyPrefix     = errors.New("key prefix may only contain alphanumeric characters and !_.*'()-")
	ErrInvalidConcurrency   = errors.New("receive concurrency must be at least 1")
)

// Kind classifies where an operation failed.
type Kind int

const (
	KindUsage Kind = iota + 1
	KindUpload
	KindDownload
	KindStorageDelete
	KindUTF8Decode
	KindStreamRead
	KindSend
	KindReceive
	KindDelete
	KindChangeVisibility
	KindPublish
	KindPointerDecode
	KindAttributeBuild
)

var kindNames = map[Kind]string{
	KindUsage:            "usage",
	KindUpload:           "upload",
	KindDownload:         "download",
	KindStorageDelete:    "storage_delete",
	KindUTF8Decode:       "utf8_decode",
	KindStreamRead:       "stream_read",
	KindSend:             "send",
	KindReceive:          "receive",
	KindDelete:           "delete",
	KindChangeVisibility: "change_visibility",
	KindPublish:          "publish",
	KindPointerDecode:    "pointer_decode",
	KindAttributeBuild:   "attribute_build",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every client operation. Err is the underlying collaborator, codec or usage
// error and is reachable with errors.Is and errors.As.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the AWS error code of the underlying error, or an empty string.
func (e *Error) Code() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

type MessageFailure struct {
	Index     int // position in ReceiveMessageOutput.Messages
	MessageId string
	Err       error
}

// ReceiveError lists the messages of a batch that could not be resolved when the client collects
// errors instead of failing the batch. The messages it names are returned as the queue sent them.
type ReceiveError struct {
	Failures []MessageFailure
}

func (e *ReceiveError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unable to resolve %d message(s)", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; [%d] %s: %v", f.Index, f.MessageId, f.Err)
	}

	return b.String()
}

func (e *ReceiveError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}

	return errs
}
