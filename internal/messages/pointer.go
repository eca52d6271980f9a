package messages

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrInvalidPointer is returned when a message body cannot be read as a pointer record.
var ErrInvalidPointer = errors.New("invalid pointer format")

// Pointer is what is sent to the queue in place of a message body stored in object storage.
//
// On the wire it is a two element array, readable by the other extended client implementations:
//
//	["software.amazon.payloadoffloading.PayloadS3Pointer",{"s3BucketName":"bucket","s3Key":"key"}]
type Pointer struct {
	BucketName string
	Key        string
	Class      string
}

// field names are part of the wire contract
type pointerLocation struct {
	S3BucketName string `json:"s3BucketName"`
	S3Key        string `json:"s3Key"`
}

type pointerLocationIn struct {
	S3BucketName *string `json:"s3BucketName"`
	S3Key        *string `json:"s3Key"`
}

func EncodePointer(p Pointer) (string, error) {
	b, err := json.Marshal([]any{
		p.Class,
		pointerLocation{S3BucketName: p.BucketName, S3Key: p.Key},
	})
	if err != nil {
		return "", fmt.Errorf("unable to marshal pointer. %w", err)
	}

	return string(b), nil
}

func DecodePointer(s string) (Pointer, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(s), &parts); err != nil {
		return Pointer{}, fmt.Errorf("%w: %v", ErrInvalidPointer, err)
	}

	if len(parts) != 2 {
		return Pointer{}, fmt.Errorf("%w: expected 2 elements but received %d", ErrInvalidPointer, len(parts))
	}

	var class *string
	if err := json.Unmarshal(parts[0], &class); err != nil || class == nil {
		return Pointer{}, fmt.Errorf("%w: pointer class is not a string", ErrInvalidPointer)
	}

	var loc pointerLocationIn
	if err := json.Unmarshal(parts[1], &loc); err != nil {
		return Pointer{}, fmt.Errorf("%w: %v", ErrInvalidPointer, err)
	}
	if loc.S3BucketName == nil {
		return Pointer{}, fmt.Errorf("%w: missing s3BucketName", ErrInvalidPointer)
	}
	if loc.S3Key == nil {
		return Pointer{}, fmt.Errorf("%w: missing s3Key", ErrInvalidPointer)
	}

	return Pointer{
		BucketName: *loc.S3BucketName,
		Key:        *loc.S3Key,
		Class:      *class,
	}, nil
}
