// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// pad is cache line padding between hot, independently-contended fields
// so a CAS storm on one (say, free) cannot false-share a cache line with
// another (say, tail) and slow down an unrelated producer or consumer.
type pad [64]byte

// header is placed at offset 0 of the caller's buffer. It never moves and
// is never individually freed; its lifetime is the buffer's lifetime.
type header struct {
	_         pad
	head      atomicRef
	_         pad
	tail      atomicRef
	_         pad
	free      atomicRef
	_         pad
	count     atomix.Int64 // advisory: enqueued elements currently reachable from head
	freeCount atomix.Int64 // advisory: entries currently on the free list
	_         pad
}

// Queue is a handle over a buffer laid out as {header, entries[N]}. The
// zero Queue is not usable; construct one with New or Init.
//
// Queue holds no pointer that escapes the buffer's lifetime: the buffer
// itself (buf) is retained only to keep it alive.
type Queue struct {
	buf     []byte
	hdr     *header
	entries []entry
}

// New allocates a fresh buffer sized for capacity entries (including the
// one consumed by the FIFO sentinel) and initializes a Queue over it.
// Panics if capacity < 1.
func New(capacity int) (*Queue, error) {
	if capacity < 1 {
		panic("evqueue: capacity must be >= 1")
	}
	size := int(unsafe.Sizeof(header{})) + capacity*int(unsafe.Sizeof(entry{}))
	return Init(make([]byte, size))
}

// Init lays out buf as {header, entries[N]} where N is as many entries
// as fit after the header, zeroes every entry, chains them into the free
// list, and installs one entry as the initial FIFO sentinel.
//
// Init is single-use per buffer: the buffer must not be reused for a
// second Init call without being re-zeroed first, since Init seeds the
// free-list chain and head/tail pointers in place.
//
// Fails with ErrInsufficientBuffer when buf cannot hold the header plus
// at least one entry.
func Init(buf []byte) (*Queue, error) {
	headerSize := unsafe.Sizeof(header{})
	entrySize := unsafe.Sizeof(entry{})
	if uintptr(len(buf)) < headerSize+entrySize {
		return nil, ErrInsufficientBuffer
	}

	hdr := (*header)(unsafe.Pointer(&buf[0]))
	*hdr = header{}

	rest := buf[headerSize:]
	n := uintptr(len(rest)) / entrySize
	entries := unsafe.Slice((*entry)(unsafe.Pointer(&rest[0])), int(n))

	for i := range entries {
		entries[i].event = Event{}
		if uintptr(i) == n-1 {
			entries[i].next.init(nilRef)
		} else {
			entries[i].next.init(ref{idx: uint64(i) + 2})
		}
	}
	hdr.free.init(ref{idx: 1})
	hdr.freeCount.Store(int64(n))

	q := &Queue{buf: buf, hdr: hdr, entries: entries}

	sentinel, ok := q.popFree()
	if !ok {
		// Unreachable: the size check above guarantees at least one entry.
		panic("evqueue: pool exhausted during init")
	}
	entries[sentinel].event = Event{}
	entries[sentinel].next.init(nilRef)
	sref := ref{idx: sentinel + 1}
	hdr.head.init(sref)
	hdr.tail.init(sref)
	hdr.count.Store(0)

	return q, nil
}

// Cap returns the total number of pool entries, including the one
// permanently consumed by the FIFO sentinel.
func (q *Queue) Cap() int {
	return len(q.entries)
}

// Len returns an advisory count of elements currently reachable from the
// FIFO head. It may drift under concurrent access and must not be used
// to gate correctness.
func (q *Queue) Len() int64 {
	return q.hdr.count.Load()
}

// FreeLen returns an advisory count of entries currently on the free
// list. It reaching zero means the next Enqueue on an empty free list
// will silently drop its event.
func (q *Queue) FreeLen() int64 {
	return q.hdr.freeCount.Load()
}

// popFree detaches and returns the top entry's index from the free list.
// Returns (0, false) when the free list is empty.
func (q *Queue) popFree() (uint64, bool) {
	sw := spin.Wait{}
	for {
		top := q.hdr.free.load()
		if top.isNil() {
			return 0, false
		}
		next := q.entries[top.idx-1].next.load()
		if q.hdr.free.cas(top, ref{idx: next.idx, tag: top.tag + 1}) {
			q.hdr.freeCount.Add(-1)
			return top.idx - 1, true
		}
		sw.Once()
	}
}

// pushFree returns the entry at idx to the top of the free list. The
// caller must be the exclusive owner of entries[idx] (e.g. it was just
// detached from the FIFO head and its payload already copied out): no
// other actor may observe or mutate it concurrently with this call.
func (q *Queue) pushFree(idx uint64) {
	sw := spin.Wait{}
	e := &q.entries[idx]
	for {
		top := q.hdr.free.load()
		e.next.storeExclusive(top)
		if q.hdr.free.cas(top, ref{idx: idx + 1, tag: top.tag + 1}) {
			q.hdr.freeCount.Add(1)
			return
		}
		sw.Once()
	}
}

// Enqueue stamps ev with the current time and producerID, acquires a
// free entry, and splices it onto the FIFO tail.
//
// Returns ErrInvalidEvent if ev.Kind is Unknown: that is a precondition
// violation, not a runtime condition to retry. Otherwise always returns
// nil, including when the pool is exhausted — per the silent-drop
// policy, a saturated queue drops the event rather than blocking or
// erroring (see FreeLen to detect this).
//
// Safe for any number of concurrent callers.
func (q *Queue) Enqueue(ev Event, producerID uint64) error {
	if ev.Kind == Unknown {
		return ErrInvalidEvent
	}
	ev.Timestamp = monotonicNow()
	ev.ProducerID = producerID

	idx, ok := q.popFree()
	if !ok {
		return nil // PoolExhausted: silent drop by design
	}

	e := &q.entries[idx]
	e.event = ev
	e.next.storeExclusive(nilRef) // just popped: not yet visible to any other actor
	node := ref{idx: idx + 1}

	sw := spin.Wait{}
	var tail ref
	for {
		tail = q.hdr.tail.load()
		tailEntry := &q.entries[tail.idx-1]
		next := tailEntry.next.load()
		if tail != q.hdr.tail.load() {
			sw.Once()
			continue
		}
		if next.isNil() {
			if tailEntry.next.cas(next, node) {
				break
			}
		} else {
			// Lagging tail: help the stalled enqueuer advance it.
			q.hdr.tail.cas(tail, ref{idx: next.idx, tag: tail.tag + 1})
		}
		sw.Once()
	}
	// Publish the new tail. Whether this succeeds is irrelevant for
	// correctness: another enqueuer's helping step may already have done it.
	q.hdr.tail.cas(tail, ref{idx: node.idx, tag: tail.tag + 1})
	q.hdr.count.Add(1)
	return nil
}

// Poll removes and returns the event at the FIFO head. Returns
// (Event{}, false) when the queue is observably empty.
//
// Safe for any number of concurrent callers.
func (q *Queue) Poll() (Event, bool) {
	sw := spin.Wait{}
	for {
		head := q.hdr.head.load()
		tail := q.hdr.tail.load()
		headEntry := &q.entries[head.idx-1]
		next := headEntry.next.load()
		if head != q.hdr.head.load() {
			sw.Once()
			continue
		}
		if head.idx == tail.idx {
			if next.isNil() {
				return Event{}, false
			}
			// Lagging tail: help the stalled enqueuer advance it.
			q.hdr.tail.cas(tail, ref{idx: next.idx, tag: tail.tag + 1})
			sw.Once()
			continue
		}

		// Copy the payload before the head-CAS: once head advances, the
		// old head entry may be recycled and overwritten by a concurrent
		// Enqueue. The new sentinel's payload is garbage from the moment
		// this CAS succeeds.
		ev := q.entries[next.idx-1].event
		if q.hdr.head.cas(head, ref{idx: next.idx, tag: head.tag + 1}) {
			q.pushFree(head.idx - 1)
			q.hdr.count.Add(-1)
			return ev, true
		}
		sw.Once()
	}
}
