package ports

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveMixJSON saves the mix report (events, peak, buffer size).
	SaveMixJSON(data []byte) error

	// SaveMixPCM saves the raw f32le mix buffer.
	SaveMixPCM(data []byte) error

	// SaveFrame saves a received RGB24 frame as a thumbnail.
	SaveFrame(index int, rgb []byte, width, height int) error

	// SaveCommand records an encoder invocation.
	SaveCommand(name string, args []string) error
}
