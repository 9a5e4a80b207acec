// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

// entry is one cell of the pool. It is permanently resident in the
// buffer passed to Init; it never moves and is never individually freed.
// An entry migrates between the free list and the FIFO purely by
// splicing next pointers — ownership is implied by which linked
// structure currently reaches it.
type entry struct {
	event Event
	next  atomicRef
}
