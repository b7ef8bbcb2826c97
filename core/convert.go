package core

// Native width of the converter's differential reading.
const (
	sampleBits = 12
	signBit    = 1 << (sampleBits - 1)
	signMask   = ^uint16(1<<sampleBits - 1)
)

// ConvertSample sign-extends a raw 12-bit differential reading into a
// two's-complement int16. Readings with bit 11 set are negative.
func ConvertSample(raw uint16) int16 {
	if raw&signBit != 0 {
		raw |= signMask
	}
	return int16(raw)
}
