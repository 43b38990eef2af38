package events

import "time"

// ExecuteStart is emitted before executing an operation.
type ExecuteStart struct {
	OperationName string
	OperationType string
}

// ExecuteFinish is emitted after executing an operation.
type ExecuteFinish struct {
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
