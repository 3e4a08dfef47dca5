// Package event carries operation lifecycle notifications from the
// mutation engine to any subscribed observer (UI, logging).
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	OpStarted Type = iota + 1
	OpProgress
	OpCompleted
	OpFailed
)

var typeNames = [...]string{
	OpStarted:   "OpStarted",
	OpProgress:  "OpProgress",
	OpCompleted: "OpCompleted",
	OpFailed:    "OpFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single notification from the engine.
//
// Per operation the delivery order is always OpStarted, zero or more
// OpProgress, then exactly one of OpCompleted or OpFailed.
type Event struct {
	Timestamp time.Time
	Op        string // operation name: copy, move, delete, rename, cleanup
	Path      string
	Bytes     int64 // bytes processed so far (OpProgress) or total (OpCompleted)
	Total     int64 // bytes total (OpProgress)
	Err       error // set on OpFailed
	Type      Type
}
