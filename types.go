// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

// Producer is the interface a producer driver needs: a single non-blocking
// enqueue operation. *Queue implements this directly; the interface exists
// so a driver can be handed a narrower capability than the full Queue.
type Producer interface {
	// Enqueue adds ev to the queue, stamping it with the current time and
	// producerID. Never blocks. Returns ErrInvalidEvent for ev.Kind ==
	// Unknown; otherwise always nil, including on silent drop when the
	// pool is exhausted.
	Enqueue(ev Event, producerID uint64) error
}

// Consumer is the interface a consumer driver needs: a single
// non-blocking dequeue operation. *Queue implements this directly.
type Consumer interface {
	// Poll removes and returns the event at the FIFO head. Returns
	// (Event{}, false) when the queue is observably empty. Never blocks.
	Poll() (Event, bool)
}
