// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import "fmt"

// producerMetrics is the per-producer throughput summary printed after
// shutdown, the Go analogue of the reference implementation's
// producer_metrics_t.
type producerMetrics struct {
	id              uint64
	eventsPerSec    float64
	maxEventsPerSec float64 // theoretical ceiling implied by the producer's period
}

// calcMetrics reduces each producer's final counters to a throughput
// figure. Called once, after every producer goroutine has returned, so
// reading st.elapsed and st.produced here is race-free without further
// synchronization.
func calcMetrics(states []*producerState) []producerMetrics {
	out := make([]producerMetrics, len(states))
	for i, st := range states {
		m := producerMetrics{id: st.id}
		if st.period > 0 {
			m.maxEventsPerSec = 1 / st.period.Seconds()
		}
		if secs := st.elapsed.Seconds(); secs > 0 {
			m.eventsPerSec = float64(st.produced.Load()) / secs
		}
		out[i] = m
	}
	return out
}

// printMetrics writes a per-producer line plus an aggregate line to
// stdout, each reporting measured throughput against the theoretical
// maximum implied by its period.
func printMetrics(metrics []producerMetrics) {
	var sumEventsPerSec, sumMaxEventsPerSec float64
	for _, m := range metrics {
		fmt.Printf("producer %d: %.2f events/second (%.2f%% of max)\n",
			m.id, m.eventsPerSec, percentOfMax(m.eventsPerSec, m.maxEventsPerSec))
		sumEventsPerSec += m.eventsPerSec
		sumMaxEventsPerSec += m.maxEventsPerSec
	}
	fmt.Printf("total: %.2f events/second (%.2f%% of max)\n",
		sumEventsPerSec, percentOfMax(sumEventsPerSec, sumMaxEventsPerSec))
}

func percentOfMax(actual, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return 100 * actual / max
}
