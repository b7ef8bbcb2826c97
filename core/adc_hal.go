package core

// AnalogDriver is the abstract analog front end that the acquisition core
// drives. Implementations route one multiplexer input to the converter,
// trigger single conversions and deliver the raw result asynchronously to a
// completion handler they were wired with (see the drivers package).
// At most one conversion is in flight at any time.
type AnalogDriver interface {
	// SelectChannel routes the given multiplexer value to the converter
	// input. The value comes from the acquisition MuxMap, not from the
	// logical input index.
	SelectChannel(mux uint8)

	// StartConversion flushes the converter and triggers a single
	// conversion. The driver reports the reading by invoking its
	// registered completion handler; there is no completion timeout at
	// this layer.
	StartConversion()

	// ConfigureGain applies one of the discrete front-end gain values.
	// The acquisition core validates the value before calling.
	ConfigureGain(gain uint8) error
}
