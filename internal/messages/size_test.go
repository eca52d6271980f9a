package messages

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
)

func TestMessageSize(t *testing.T) {
	var tests = []struct {
		desc      string
		inMsgBody *string
		//len(key)+len(datatype)+len(value)
		inMsgAttr map[string]MessageAttributeValue
		expSize   Size
	}{
		{
			desc:    "body_nil_attr_nil_out_0",
			expSize: Size{},
		},
		{
			desc:      "body_10_attr_nil_out_10",
			inMsgBody: aws.String("0123456789"),
			expSize:   Size{Body: 10},
		},
		{
			desc:      "body_10_attr_1_string_22_out_32",
			inMsgBody: aws.String("0123456789"),
			inMsgAttr: map[string]MessageAttributeValue{
				"Test01": {
					DataType:    aws.String("String.blah"),
					StringValue: aws.String("01234"),
				},
			},
			expSize: Size{Body: 10, Attributes: 22},
		},
		{
			desc:      "body_10_attr_1_binary_22_out_32",
			inMsgBody: aws.String("0123456789"),
			inMsgAttr: map[string]MessageAttributeValue{
				"Test01": {
					DataType:    aws.String("Binary.blah"),
					BinaryValue: []byte{0, 1, 2, 3, 4},
				},
			},
			expSize: Size{Body: 10, Attributes: 22},
		},
		{
			desc:      "body_10_attr_2_string_17_binary_17_out_44",
			inMsgBody: aws.String("0123456789"),
			inMsgAttr: map[string]MessageAttributeValue{
				"Test01": {
					DataType:    aws.String("String"),
					StringValue: aws.String("01234"),
				},
				"Test02": {
					DataType:    aws.String("Binary"),
					BinaryValue: []byte{0, 1, 2, 3, 4},
				},
			},
			expSize: Size{Body: 10, Attributes: 34},
		},
		{
			desc:      "body_10_attr_1_string_and_binary_out_33",
			inMsgBody: aws.String("0123456789"),
			inMsgAttr: map[string]MessageAttributeValue{
				"Test01": {
					DataType:    aws.String("String"),
					StringValue: aws.String("012345"),
					BinaryValue: []byte{0, 1, 2, 3, 4},
				},
			},
			expSize: Size{Body: 10, Attributes: 23},
		},
		{
			desc:      "body_empty_attr_no_datatype_out_6",
			inMsgBody: aws.String(""),
			inMsgAttr: map[string]MessageAttributeValue{
				"Test01": {},
			},
			expSize: Size{Attributes: 6},
		},
		{
			desc:      "body_multibyte_counts_bytes",
			inMsgBody: aws.String("héllo"),
			expSize:   Size{Body: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			size := MessageSize(tt.inMsgBody, tt.inMsgAttr)
			assert.Equal(t, tt.expSize, size, "expected size")
			assert.Equal(t, tt.expSize.Body+tt.expSize.Attributes, size.Total(), "expected total")
		})
	}
}

func TestShouldOffload(t *testing.T) {
	const threshold = 20

	var tests = []struct {
		desc   string
		always bool
		size   Size
		exp    bool
	}{
		{desc: "below_threshold", size: Size{Body: 19}, exp: false},
		{desc: "at_threshold", size: Size{Body: 20}, exp: false},
		{desc: "threshold_plus_one", size: Size{Body: 21}, exp: true},
		{desc: "attributes_push_over_threshold", size: Size{Body: 15, Attributes: 6}, exp: true},
		{desc: "always_empty_body", always: true, size: Size{}, exp: true},
		{desc: "always_below_threshold", always: true, size: Size{Body: 10}, exp: true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.exp, ShouldOffload(tt.always, tt.size, threshold))
		})
	}
}

func TestToExtendedSize(t *testing.T) {
	size := Size{Body: 262_145, Attributes: 40}

	ext := size.ToExtendedSize(100, len("ExtendedPayloadSize")+len("Number"))

	assert.Equal(t, int64(100), ext.Body)
	// 25 base bytes, 6 digits for the body length, original attributes
	assert.Equal(t, int64(25+6+40), ext.Attributes)

	assert.Equal(t, int64(1), Size{Body: 9}.ToExtendedSize(0, 0).Attributes)
	assert.Equal(t, int64(2), Size{Body: 10}.ToExtendedSize(0, 0).Attributes)
}

func TestMapSqsAttributesRoundTrip(t *testing.T) {
	in := map[string]MessageAttributeValue{
		"a": {DataType: aws.String("String"), StringValue: aws.String("x")},
		"b": {DataType: aws.String("Binary"), BinaryValue: []byte{1}},
	}

	assert.Equal(t, in, MapFromSqsMessageAttributeValues(MapToSqsMessageAttributeValues(in)))
	assert.Equal(t, in, MapFromSnsMessageAttributeValues(MapToSnsMessageAttributeValues(in)))
	assert.Nil(t, MapFromSqsMessageAttributeValues(nil))
	assert.Nil(t, MapToSnsMessageAttributeValues(nil))
}

func BenchmarkMessageSize(b *testing.B) {
	body := strings.Repeat("x", 256*1024)
	attrs := map[string]MessageAttributeValue{
		"test1": {DataType: aws.String("String"), StringValue: aws.String(strings.Repeat("y", 1024))},
		"test2": {DataType: aws.String("Binary"), BinaryValue: make([]byte, 1024)},
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = MessageSize(&body, attrs)
	}
}
