// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package evqueue

// RaceEnabled is true when the race detector is active.
// Used by tests to skip heavily concurrent tests, which trigger false
// positives because the race detector cannot see the happens-before
// relationship established by atomix acquire/release CAS on separate
// tagged-reference words.
const RaceEnabled = true
