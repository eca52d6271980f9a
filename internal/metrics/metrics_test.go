package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.Offloaded("SendMessage", 300_000)
	c.Offloaded("SendMessage", 400_000)
	c.Offloaded("PublishMessage", 300_000)
	c.Fetched()
	c.Deleted()
	c.Failed("download")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.PayloadsOffloaded.WithLabelValues("SendMessage")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PayloadsOffloaded.WithLabelValues("PublishMessage")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PayloadsFetched))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PayloadsDeleted))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Errors.WithLabelValues("download")))

	expected := `
# HELP sqsextended_payloads_fetched_total Total number of offloaded message bodies fetched from object storage.
# TYPE sqsextended_payloads_fetched_total counter
sqsextended_payloads_fetched_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sqsextended_payloads_fetched_total"))
}

func TestCollectorRegisteredTwice(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := New(reg)
	second := New(reg)

	first.Fetched()
	second.Fetched()

	assert.Equal(t, float64(2), testutil.ToFloat64(second.PayloadsFetched))
}

func TestCollectorUnregistered(t *testing.T) {
	c := New(nil)

	assert.NotPanics(t, func() {
		c.Offloaded("SendMessage", 1)
		c.Failed("upload")
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PayloadsOffloaded.WithLabelValues("SendMessage")))
}
