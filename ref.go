// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

import "code.hybscloud.com/atomix"

// ref is a tagged reference into the entry pool. idx is one plus the
// entry's index in Queue.entries; zero means nil. On the header's head,
// tail and free words, tag is bumped on every successful CAS, so a stale
// observer cannot mistake a recycled entry for the one it originally saw,
// even though the index itself is reused. This is the tagged-pointer ABA
// defense for the free list and the FIFO's head/tail (see DESIGN.md).
// Entry next links use the same representation, but their CAS and
// exclusive stores do not bump the tag.
type ref struct {
	idx uint64
	tag uint64
}

var nilRef = ref{}

func (r ref) isNil() bool {
	return r.idx == 0
}

// atomicRef is a ref stored in a single 128-bit word so idx and tag move
// together under one CAS.
type atomicRef struct {
	word atomix.Uint128
}

func (a *atomicRef) load() ref {
	lo, hi := a.word.LoadAcquire()
	return ref{idx: lo, tag: hi}
}

// init sets the word without synchronization. Only valid before the
// Queue is published to other goroutines.
func (a *atomicRef) init(r ref) {
	a.word.StoreRelaxed(r.idx, r.tag)
}

// storeExclusive writes the word without a CAS. Only valid when the
// caller is the sole owner of the entry the field lives on (e.g. pushing
// an entry onto the free list that no other actor can yet observe).
func (a *atomicRef) storeExclusive(r ref) {
	a.word.StoreRelaxed(r.idx, r.tag)
}

func (a *atomicRef) cas(old, new ref) bool {
	return a.word.CompareAndSwapAcqRel(old.idx, old.tag, new.idx, new.tag)
}
