package sqsextended

const (
	DefaultMessageSizeThreshold = 262_144 // 256KB, the queue's own hard limit

	DefaultPointerClass = "software.amazon.payloadoffloading.PayloadS3Pointer"
	LegacyPointerClass  = "com.amazon.sqs.javamessaging.MessageS3Pointer"

	ReservedAttributeName       = "ExtendedPayloadSize" // written on every offloaded message
	LegacyReservedAttributeName = "SQSLargePayloadSize" // still recognized on receive

	// MaxAllowedAttributes is the number of caller attributes an offloaded message may carry. One of
	// the queue's 10 attribute slots is taken by the reserved attribute.
	MaxAllowedAttributes = 10 - 1
)

const (
	allMessageAttributes        = "All"
	allMessageAttributesPattern = ".*"
	numberDataType              = "Number"
	tracerName                  = "github.com/vinujohn/sqsextended"
)
