// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package evqueue

import "time"

// monotonicNow returns a reading that is non-decreasing within a single
// goroutine, standing in for the reference implementation's
// GetSystemTimePreciseAsFileTime. time.Now carries Go's monotonic clock
// reading internally; Sub/Since comparisons (and simple ordering of the
// returned int64 here) use it rather than the wall-clock component, so
// this is stable across NTP adjustments within a single run.
var epoch = time.Now()

func monotonicNow() int64 {
	return int64(time.Since(epoch))
}
