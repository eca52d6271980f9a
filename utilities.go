package sqsextended

import "github.com/vinujohn/sqsextended/internal/messages"

// Pointer locates a message body stored in AWS S3.
type Pointer struct {
	BucketName string
	Key        string
	Class      string
}

// PointerFromBody determines if a message body is a pointer to a body stored in AWS S3 and returns it.
// This function is provided to developers who are using workflows where SNS/SQS messages are being
// sent to endpoints like AWS Lambda where it would be necessary to download the large message from
// S3 directly without using this package. Developers should also perform the necessary cleanup of
// S3 and SQS when using this workflow.
func PointerFromBody(msgBody string) (Pointer, bool) {
	p, err := messages.DecodePointer(msgBody)
	if err != nil {
		return Pointer{}, false
	}

	return Pointer(p), true
}

// IsExtendedReceiptHandle reports whether a receipt handle returned by Client.ReceiveMessage
// belongs to an offloaded message.
func IsExtendedReceiptHandle(receiptHandle string) bool {
	_, _, _, err := messages.DecodeReceiptHandle(receiptHandle)
	return err == nil
}
