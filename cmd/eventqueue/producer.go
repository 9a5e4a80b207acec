// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/bostelk/event-queue"
)

// producerState is the Go analogue of the reference implementation's
// producer_params_t: per-producer controls (period, work toggle) and
// counters (produced count, elapsed time), shared between the goroutine
// that runs the producer and the main goroutine that toggles it from the
// keyboard and reports on it after shutdown.
type producerState struct {
	id       uint64
	period   time.Duration
	doWork   atomix.Bool
	produced atomix.Int64
	elapsed  time.Duration // only valid after runProducer returns
}

// runProducer enqueues a Random event every period while doWork is true,
// until ctx is canceled. It never blocks on a full queue: Enqueue's
// silent-drop policy means a saturated pool simply loses the event.
func runProducer(ctx context.Context, q evqueue.Producer, st *producerState) {
	start := time.Now()
	ticker := time.NewTicker(st.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.elapsed = time.Since(start)
			return
		case <-ticker.C:
			if !st.doWork.Load() {
				continue
			}
			// Random is never Unknown, so this enqueue cannot fail its
			// one precondition; any error here would be a bug.
			if err := q.Enqueue(evqueue.Event{Kind: evqueue.Random}, st.id); err != nil {
				panic(fmt.Sprintf("eventqueue: producer %d: unexpected Enqueue error: %v", st.id, err))
			}
			st.produced.Add(1)
		}
	}
}
