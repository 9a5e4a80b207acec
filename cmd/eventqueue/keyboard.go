// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
)

// readKeys replaces the reference implementation's polling _kbhit/_getch
// loop: in raw terminal mode a Read of one byte returns as soon as a key
// is pressed, so a single blocking reader goroutine feeding a channel is
// the idiomatic equivalent. It exits when r.Read errors (terminal closed)
// or ctx is canceled while a key is queued but unread.
func readKeys(ctx context.Context, r io.Reader, keys chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case keys <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}
