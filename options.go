package sqsextended

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type Option func(cfg *Config) error

// WithBucketName sets the bucket offloaded bodies are written to. Without it, sends fail with
// ErrNoBucketName while receives and deletes still work, since they read the bucket from the message.
func WithBucketName(bucketName string) Option {
	return func(cfg *Config) error {
		cfg.bucketName = bucketName
		return nil
	}
}

// WithMessageSizeThreshold sets the size in bytes (body plus attributes) above which a message is
// offloaded.
func WithMessageSizeThreshold(threshold int64) Option {
	return func(cfg *Config) error {
		if threshold <= 0 {
			return ErrInvalidThreshold
		}
		cfg.messageSizeThreshold = threshold
		return nil
	}
}

// WithBatchMessageSizeThreshold sets the size in bytes a single message may take in a send batch,
// measured as it will sit in the queue (pointer and reserved attribute included when offloaded).
// Larger messages are still sent, with a warning logged.
func WithBatchMessageSizeThreshold(threshold int64) Option {
	return func(cfg *Config) error {
		if threshold <= 0 {
			return ErrInvalidThreshold
		}
		cfg.batchMessageSizeThreshold = threshold
		return nil
	}
}

// WithAlwaysOffload stores every message body in AWS S3 regardless of its size.
func WithAlwaysOffload() Option {
	return func(cfg *Config) error {
		cfg.alwaysOffload = true
		return nil
	}
}

// WithPointerClass sets the class name written as the first element of every pointer.
// Use LegacyPointerClass for consumers that only understand the older name.
func WithPointerClass(class string) Option {
	return func(cfg *Config) error {
		if class == "" {
			return ErrInvalidPointerClass
		}
		cfg.pointerClass = class
		return nil
	}
}

// WithReservedAttributeNames replaces the attribute names marking an offloaded message. The first
// name is written on send and all of them are recognized on receive.
func WithReservedAttributeNames(names ...string) Option {
	return func(cfg *Config) error {
		if len(names) == 0 || slices.Contains(names, "") {
			return ErrNoReservedAttributes
		}
		cfg.reservedAttributeNames = slices.Clone(names)
		return nil
	}
}

// WithKeyPrefix stores offloaded bodies under "<prefix>/<uuid>".
func WithKeyPrefix(prefix string) Option {
	return func(cfg *Config) error {
		if !keyPrefixRegex.MatchString(prefix) {
			return ErrInvalidKeyPrefix
		}
		cfg.keyPrefix = prefix
		return nil
	}
}

// WithSkipPayloadDeletion keeps offloaded bodies in the bucket when their message is deleted.
// Useful when the bucket has a lifecycle rule or several consumers share one body.
func WithSkipPayloadDeletion() Option {
	return func(cfg *Config) error {
		cfg.skipPayloadDeletion = true
		return nil
	}
}

// WithReceiveConcurrency fetches up to n offloaded bodies of a batch at the same time.
func WithReceiveConcurrency(n int) Option {
	return func(cfg *Config) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		cfg.receiveConcurrency = n
		return nil
	}
}

func WithReceiveFailurePolicy(policy FailurePolicy) Option {
	return func(cfg *Config) error {
		cfg.receiveFailurePolicy = policy
		return nil
	}
}

// WithBucketVerification makes New and NewSnsClient check that the configured bucket exists.
func WithBucketVerification() Option {
	return func(cfg *Config) error {
		cfg.verifyBucket = true
		return nil
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *Config) error {
		cfg.logger = logger
		return nil
	}
}

// WithLogAttributeNames adds the string values of the named message attributes to log entries.
func WithLogAttributeNames(names ...string) Option {
	return func(cfg *Config) error {
		cfg.logAttributeNames = slices.Clone(names)
		return nil
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *Config) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsRegisterer registers the client's Prometheus collectors with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *Config) error {
		cfg.registerer = reg
		return nil
	}
}
