// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

import "errors"

// ErrInsufficientBuffer is returned by Init when the supplied buffer is
// too small to hold the header plus at least one entry.
var ErrInsufficientBuffer = errors.New("evqueue: buffer too small for header and one entry")

// ErrInvalidEvent is returned by Enqueue when the event's Kind is Unknown,
// the null-object sentinel. This is a precondition violation: callers
// should never construct an Event with a Kind other than one of the
// declared non-Unknown variants.
var ErrInvalidEvent = errors.New("evqueue: cannot enqueue an event with Kind == Unknown")

// Pool exhaustion is deliberately not an error value. Per design, an
// Enqueue that finds the free list empty silently drops the event and
// returns nil — see Queue.Enqueue and DESIGN.md. Callers who want to
// detect saturation should watch Queue.FreeLen.
