package sqsextended

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	_, ok := cfg.BucketName()
	assert.False(t, ok)
	assert.Equal(t, int64(262_144), cfg.MessageSizeThreshold())
	assert.Equal(t, int64(262_144), cfg.BatchMessageSizeThreshold())
	assert.False(t, cfg.AlwaysOffload())
	assert.Equal(t, "software.amazon.payloadoffloading.PayloadS3Pointer", cfg.PointerClass())
	assert.Equal(t, []string{"ExtendedPayloadSize", "SQSLargePayloadSize"}, cfg.ReservedAttributeNames())
	assert.Empty(t, cfg.KeyPrefix())
	assert.False(t, cfg.SkipPayloadDeletion())
	assert.Equal(t, 1, cfg.ReceiveConcurrency())
	assert.Equal(t, AbortBatch, cfg.ReceiveFailurePolicy())
	assert.False(t, cfg.VerifyBucket())
	assert.Equal(t, logrus.StandardLogger(), cfg.logger)
	assert.NotNil(t, cfg.tracerProvider)

	assert.Equal(t, len("ExtendedPayloadSize")+len("Number"), cfg.BaseAttributeSize())
	// uuid keys are 36 characters
	assert.Equal(t, len(`["",{"s3BucketName":"","s3Key":""}]`)+len(DefaultPointerClass)+36, cfg.BasePointerSize())
}

func TestNewConfigOptions(t *testing.T) {
	cfg, err := NewConfig(
		WithBucketName("bucket"),
		WithMessageSizeThreshold(1024),
		WithBatchMessageSizeThreshold(2048),
		WithAlwaysOffload(),
		WithPointerClass(LegacyPointerClass),
		WithReservedAttributeNames("Custom", ReservedAttributeName),
		WithKeyPrefix("orders"),
		WithSkipPayloadDeletion(),
		WithReceiveConcurrency(8),
		WithReceiveFailurePolicy(CollectErrors),
		WithBucketVerification(),
		WithLogAttributeNames("trace_id"),
	)
	require.NoError(t, err)

	bucket, ok := cfg.BucketName()
	assert.True(t, ok)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, int64(1024), cfg.MessageSizeThreshold())
	assert.Equal(t, int64(2048), cfg.BatchMessageSizeThreshold())
	assert.True(t, cfg.AlwaysOffload())
	assert.Equal(t, LegacyPointerClass, cfg.PointerClass())
	assert.Equal(t, []string{"Custom", ReservedAttributeName}, cfg.ReservedAttributeNames())
	assert.Equal(t, "orders", cfg.KeyPrefix())
	assert.True(t, cfg.SkipPayloadDeletion())
	assert.Equal(t, 8, cfg.ReceiveConcurrency())
	assert.Equal(t, CollectErrors, cfg.ReceiveFailurePolicy())
	assert.True(t, cfg.VerifyBucket())
	assert.Equal(t, []string{"trace_id"}, cfg.logAttributeNames)

	assert.Equal(t, len("Custom")+len("Number"), cfg.BaseAttributeSize())
	assert.Equal(t, len(`["",{"s3BucketName":"","s3Key":""}]`)+len(LegacyPointerClass)+len("orders/")+36, cfg.BasePointerSize())
}

func TestNewConfigInvalid(t *testing.T) {
	var tests = []struct {
		desc string
		opts []Option
		err  error
	}{
		{desc: "zero_threshold", opts: []Option{WithMessageSizeThreshold(0)}, err: ErrInvalidThreshold},
		{desc: "negative_batch_threshold", opts: []Option{WithBatchMessageSizeThreshold(-1)}, err: ErrInvalidThreshold},
		{desc: "no_reserved_names", opts: []Option{WithReservedAttributeNames()}, err: ErrNoReservedAttributes},
		{desc: "empty_reserved_name", opts: []Option{WithReservedAttributeNames(ReservedAttributeName, "")}, err: ErrNoReservedAttributes},
		{desc: "empty_pointer_class", opts: []Option{WithPointerClass("")}, err: ErrInvalidPointerClass},
		{desc: "prefix_with_slash", opts: []Option{WithKeyPrefix("a/b")}, err: ErrInvalidKeyPrefix},
		{desc: "prefix_with_space", opts: []Option{WithKeyPrefix("a b")}, err: ErrInvalidKeyPrefix},
		{desc: "empty_prefix", opts: []Option{WithKeyPrefix("")}, err: ErrInvalidKeyPrefix},
		{desc: "zero_concurrency", opts: []Option{WithReceiveConcurrency(0)}, err: ErrInvalidConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg, err := NewConfig(tt.opts...)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfigReservedAttributeNamesIsCopy(t *testing.T) {
	names := []string{"A", "B"}
	cfg, err := NewConfig(WithReservedAttributeNames(names...))
	require.NoError(t, err)

	names[0] = "changed"
	got := cfg.ReservedAttributeNames()
	got[1] = "changed"

	assert.Equal(t, []string{"A", "B"}, cfg.ReservedAttributeNames())
}

func TestKeyPrefixCharacters(t *testing.T) {
	for _, prefix := range []string{"abc", "ABC-123", "a_b.c", "!*'()"} {
		_, err := NewConfig(WithKeyPrefix(prefix))
		assert.NoError(t, err, prefix)
	}
}
