package ports

// ProgressReporter receives frame progress from a running capture.
type ProgressReporter interface {
	// Report is called with the frames received so far. total is 0 when
	// the expected frame count is unknown.
	Report(done, total int)

	// Done is called once when the capture ends.
	Done()
}
