package events

import "time"

// CompileStart is emitted when a schema compile pass begins.
type CompileStart struct {
	Schema string
}

// CompileFinish is emitted when a schema compile pass ends.
type CompileFinish struct {
	Schema   string
	Types    int
	Err      error
	Duration time.Duration
}
