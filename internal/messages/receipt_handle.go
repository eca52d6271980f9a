package messages

import (
	"errors"
	"strings"
)

const (
	BucketNameMarker = "-..s3BucketName..-"
	KeyMarker        = "-..s3Key..-"
)

// ErrNotExtended is returned by DecodeReceiptHandle for handles without both marker pairs.
// Callers treat it as an ordinary, non offloaded message.
var ErrNotExtended = errors.New("receipt handle is not extended")

/*
|marker|bucket|marker|marker|key|marker|original receipt handle|

Bucket names and keys are not escaped. A value containing one of the markers will not decode
back to the same parts. Empty parts are kept as is.
*/
func EncodeReceiptHandle(bucket, key, handle string) string {
	var b strings.Builder
	b.Grow(2*len(BucketNameMarker) + 2*len(KeyMarker) + len(bucket) + len(key) + len(handle))

	b.WriteString(BucketNameMarker)
	b.WriteString(bucket)
	b.WriteString(BucketNameMarker)
	b.WriteString(KeyMarker)
	b.WriteString(key)
	b.WriteString(KeyMarker)
	b.WriteString(handle)

	return b.String()
}

func DecodeReceiptHandle(extended string) (bucket, key, handle string, err error) {
	rest, ok := strings.CutPrefix(extended, BucketNameMarker)
	if !ok {
		return "", "", "", ErrNotExtended
	}

	bucket, rest, ok = strings.Cut(rest, BucketNameMarker)
	if !ok {
		return "", "", "", ErrNotExtended
	}

	rest, ok = strings.CutPrefix(rest, KeyMarker)
	if !ok {
		return "", "", "", ErrNotExtended
	}

	key, handle, ok = strings.Cut(rest, KeyMarker)
	if !ok {
		return "", "", "", ErrNotExtended
	}

	return bucket, key, handle, nil
}
