// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package evqueue provides a lock-free, multi-producer/multi-consumer
// FIFO event queue over a fixed, pre-allocated pool of entries.
//
// The queue is a Michael & Scott non-blocking linked list (Michael, M.M.
// and Scott, M.L., "Simple, Fast, and Practical Non-Blocking and Blocking
// Concurrent Queue Algorithms", PODC 1996) with a sentinel node, combined
// with a lock-free LIFO free list that recycles entries instead of
// allocating. Both structures are views over the same caller-supplied
// buffer: nothing is heap-allocated after Init.
//
// # Quick Start
//
//	q, err := evqueue.New(4096)
//	if err != nil {
//	    // buffer too small
//	}
//
//	// Producer (any number of goroutines)
//	err = q.Enqueue(evqueue.Event{Kind: evqueue.Random}, producerID)
//
//	// Consumer (any number of goroutines)
//	ev, ok := q.Poll()
//	if ok {
//	    fmt.Println(ev.Kind, ev.Timestamp, ev.ProducerID)
//	}
//
// # Capacity and Saturation
//
// One pool entry is permanently consumed by the FIFO sentinel, so a pool
// of N entries holds at most N-1 user events at a time. When the free
// list is exhausted, Enqueue silently drops the event (returns nil) —
// this is a conscious design choice inherited from the reference
// implementation: the queue is a telemetry ring, and losing an event is
// preferable to blocking a producer. Use FreeLen to detect saturation.
//
// # Thread Safety
//
// Enqueue and Poll are safe for any number of concurrent callers on
// either side: the algorithms are multi-producer/multi-consumer correct,
// even though the shipped cmd/eventqueue driver only ever runs one
// consumer.
//
// # ABA Safety
//
// Every shared pointer field (head, tail, free, and each entry's next)
// is a 128-bit tagged reference: a pool index packed with a tag. On
// head, tail and free the tag increments on every successful CAS, so an
// observer holding a stale (index, tag) pair of one of those words can
// never be fooled by a recycled entry carrying the same index, because
// the tag will have moved on. An entry's next is not a generation
// counter: the link CAS in Enqueue keeps tag 0, and the exclusive stores
// made when an entry is popped or pushed overwrite the tag.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for every shared word and
// [code.hybscloud.com/spin] for CAS backoff, matching the conventions of
// the wider lock-free queue family this package was extracted from.
//
// # Race Detection
//
// As with the package's sibling ring-buffer queues, the race detector
// cannot observe happens-before relationships established purely through
// atomix acquire/release CAS on separate words. Concurrency-heavy tests
// skip themselves when RaceEnabled is true.
package evqueue
