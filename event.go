// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

// Kind tags the variant of an Event. Unknown is the null-object sentinel:
// it must never reach Enqueue, which rejects it with ErrInvalidEvent.
type Kind uint8

const (
	// Unknown is the sentinel zero value. Never enqueue it.
	Unknown Kind = iota
	// Random marks an event produced without further classification,
	// the only variant the original producer ever emitted.
	Random
	// Tick marks a periodic heartbeat-style event.
	Tick
	// Alert marks an event a consumer may want to surface distinctly.
	// The queue itself applies no priority between kinds.
	Alert
)

func (k Kind) String() string {
	switch k {
	case Random:
		return "random"
	case Tick:
		return "tick"
	case Alert:
		return "alert"
	default:
		return "unknown"
	}
}

// Event is the payload carried by one pool entry. It is immutable once
// enqueued: Enqueue stamps Timestamp and ProducerID, and the queue never
// mutates it again before a consumer reads it from Poll.
type Event struct {
	Kind       Kind
	Timestamp  int64 // nanoseconds, monotonic within a single producer
	ProducerID uint64
}
