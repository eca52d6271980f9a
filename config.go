package sqsextended

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/vinujohn/sqsextended/internal/messages"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var keyPrefixRegex = regexp.MustCompile(`^[0-9a-zA-Z!_.*'()-]+$`)

// FailurePolicy decides what ReceiveMessage does when one message of a batch cannot be resolved.
type FailurePolicy int

const (
	// AbortBatch fails the whole receive call on the first message that cannot be resolved.
	AbortBatch FailurePolicy = iota
	// CollectErrors resolves every message it can, leaves the others as the queue returned them
	// and reports them in a *ReceiveError next to the output.
	CollectErrors
)

func (p FailurePolicy) String() string {
	switch p {
	case AbortBatch:
		return "abort_batch"
	case CollectErrors:
		return "collect_errors"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Config is the immutable configuration shared by Client and SnsClient. Create it with NewConfig.
type Config struct {
	bucketName                string
	messageSizeThreshold      int64
	batchMessageSizeThreshold int64
	alwaysOffload             bool
	pointerClass              string
	reservedAttributeNames    []string
	keyPrefix                 string

	skipPayloadDeletion  bool
	receiveConcurrency   int
	receiveFailurePolicy FailurePolicy
	verifyBucket         bool

	logger            logrus.FieldLogger
	logAttributeNames []string
	tracerProvider    trace.TracerProvider
	registerer        prometheus.Registerer

	// derived
	baseAttributeSize int
	basePointerSize   int
}

// NewConfig applies opts over the defaults and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		messageSizeThreshold:      DefaultMessageSizeThreshold,
		batchMessageSizeThreshold: DefaultMessageSizeThreshold,
		pointerClass:              DefaultPointerClass,
		reservedAttributeNames:    []string{ReservedAttributeName, LegacyReservedAttributeName},
		receiveConcurrency:        1,
		receiveFailurePolicy:      AbortBatch,
		logger:                    logrus.StandardLogger(),
		tracerProvider:            otel.GetTracerProvider(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.baseAttributeSize = len(cfg.reservedAttributeNames[0]) + len(numberDataType)

	// bucket name is excluded as it is only known at send time for some callers
	pointer, err := messages.EncodePointer(messages.Pointer{Class: cfg.pointerClass, Key: cfg.objectKey(uuid.NewString())})
	if err != nil {
		return nil, fmt.Errorf("unable to size pointer. %v", err)
	}
	cfg.basePointerSize = len(pointer)

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.messageSizeThreshold <= 0 || cfg.batchMessageSizeThreshold <= 0 {
		return ErrInvalidThreshold
	}

	if len(cfg.reservedAttributeNames) == 0 || slices.Contains(cfg.reservedAttributeNames, "") {
		return ErrNoReservedAttributes
	}

	if cfg.pointerClass == "" {
		return ErrInvalidPointerClass
	}

	if cfg.keyPrefix != "" && !keyPrefixRegex.MatchString(cfg.keyPrefix) {
		return ErrInvalidKeyPrefix
	}

	if cfg.receiveConcurrency < 1 {
		return ErrInvalidConcurrency
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}

	return nil
}

func (cfg *Config) objectKey(id string) string {
	if cfg.keyPrefix == "" {
		return id
	}

	return cfg.keyPrefix + "/" + id
}

func (cfg *Config) BucketName() (string, bool) {
	return cfg.bucketName, cfg.bucketName != ""
}

func (cfg *Config) MessageSizeThreshold() int64 {
	return cfg.messageSizeThreshold
}

func (cfg *Config) BatchMessageSizeThreshold() int64 {
	return cfg.batchMessageSizeThreshold
}

func (cfg *Config) AlwaysOffload() bool {
	return cfg.alwaysOffload
}

func (cfg *Config) PointerClass() string {
	return cfg.pointerClass
}

// ReservedAttributeNames returns a copy of the reserved names. The first one is written on send.
func (cfg *Config) ReservedAttributeNames() []string {
	return slices.Clone(cfg.reservedAttributeNames)
}

func (cfg *Config) KeyPrefix() string {
	return cfg.keyPrefix
}

// BaseAttributeSize is the size of the reserved attribute without its value.
func (cfg *Config) BaseAttributeSize() int {
	return cfg.baseAttributeSize
}

// BasePointerSize is the size of an encoded pointer with an empty bucket name.
func (cfg *Config) BasePointerSize() int {
	return cfg.basePointerSize
}

func (cfg *Config) SkipPayloadDeletion() bool {
	return cfg.skipPayloadDeletion
}

func (cfg *Config) ReceiveConcurrency() int {
	return cfg.receiveConcurrency
}

func (cfg *Config) ReceiveFailurePolicy() FailurePolicy {
	return cfg.receiveFailurePolicy
}

func (cfg *Config) VerifyBucket() bool {
	return cfg.verifyBucket
}
