package messages

// Size describes the size of a queue message, split between its body and its attributes.
type Size struct {
	Body       int64
	Attributes int64
}

// Total returns the full message size as counted by the queue against its limit.
func (s Size) Total() int64 {
	return s.Body + s.Attributes
}

// ToExtendedSize estimates what s would weigh once offloaded: the body becomes a pointer of
// pointerSize bytes and the reserved attribute (attributeSize bytes plus the digits of the original
// body length) is added to the existing attributes.
func (s Size) ToExtendedSize(pointerSize, attributeSize int) Size {
	n, numDigits := int64(10), int64(1)
	for n <= s.Body {
		n *= 10
		numDigits++
	}

	return Size{
		Body:       int64(pointerSize),
		Attributes: int64(attributeSize) + numDigits + s.Attributes,
	}
}

// MessageSize computes the size of a message body and its attributes using the queue's sizing
// rules: body bytes plus, for every attribute, len(name)+len(data type)+len(string value)+len(binary value).
func MessageSize(body *string, msgAttr map[string]MessageAttributeValue) Size {
	var size Size
	if body != nil {
		size.Body = int64(len(*body))
	}
	size.Attributes = AttributesSize(msgAttr)

	return size
}

// AttributesSize returns the size contribution of a set of message attributes.
func AttributesSize(msgAttr map[string]MessageAttributeValue) int64 {
	var size int64
	for k, v := range msgAttr {
		size += int64(len(k))
		if v.DataType != nil {
			size += int64(len(*v.DataType))
		}
		if v.StringValue != nil {
			size += int64(len(*v.StringValue))
		}
		size += int64(len(v.BinaryValue))
	}

	return size
}

// ShouldOffload reports whether a message of the given size has to be stored in object storage.
// A message exactly at the threshold stays in the queue.
func ShouldOffload(always bool, size Size, threshold int64) bool {
	return always || size.Total() > threshold
}
