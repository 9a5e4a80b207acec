// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command eventqueue drives the evqueue package: it spawns a configurable
// number of producer goroutines against one shared queue and polls it
// from the main goroutine, printing each event as it is delivered. While
// attached to a terminal, keys toggle producers on and off:
//
//	p     pause or resume every producer
//	1, 2  pause or resume producer 0 or 1 individually
//	q     stop all producers and print a final throughput report
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	evqueue "github.com/bostelk/event-queue"
)

var cli struct {
	Producers int           `help:"Number of producer goroutines." default:"4" short:"n"`
	Capacity  int           `help:"Pool entries, including the sentinel." default:"4096" short:"c"`
	Period    time.Duration `help:"Delay between enqueue attempts, per producer." default:"1ms"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("eventqueue"),
		kong.Description("lock-free MPSC event queue demo driver"),
	)

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "eventqueue",
		Level: hclog.Info,
	})

	q, err := evqueue.New(cli.Capacity)
	if err != nil {
		logger.Error("failed to initialize queue", "error", err)
		os.Exit(1)
	}
	logger.Info("queue initialized", "capacity", q.Cap(), "producers", cli.Producers, "period", cli.Period)

	ctx, cancel := context.WithCancel(context.Background())

	states := make([]*producerState, cli.Producers)
	var wg sync.WaitGroup
	for i := range states {
		st := &producerState{id: uint64(i), period: cli.Period}
		st.doWork.Store(true)
		states[i] = st

		wg.Add(1)
		go func(st *producerState) {
			defer wg.Done()
			runProducer(ctx, q, st)
		}(st)
	}

	keys := make(chan byte, 16)
	restore := attachKeyboard(ctx, logger, keys)
	if restore != nil {
		defer restore()
	}

	consume(ctx, logger, q, states, keys)

	cancel()
	wg.Wait()
	if restore != nil {
		restore()
	}

	for {
		ev, ok := q.Poll()
		if !ok {
			break
		}
		fmt.Printf("t+%s producer=%d %s\n", time.Duration(ev.Timestamp), ev.ProducerID, ev.Kind)
	}

	printMetrics(calcMetrics(states))
}

// attachKeyboard puts stdin into raw mode and starts readKeys against it,
// returning a function that restores the terminal. Returns nil when
// stdin is not a terminal or raw mode cannot be entered: keyboard control
// is an enhancement, not a requirement for the demo to run.
func attachKeyboard(ctx context.Context, logger hclog.Logger, keys chan<- byte) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		logger.Warn("stdin is not a terminal, keyboard control disabled")
		return nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		logger.Warn("could not enter raw terminal mode, keyboard control disabled", "error", err)
		return nil
	}
	go readKeys(ctx, os.Stdin, keys)
	return func() { _ = term.Restore(fd, state) }
}

// consume polls the queue and dispatches keystrokes until 'q' is pressed
// or no keyboard is attached and ctx is otherwise canceled.
func consume(ctx context.Context, logger hclog.Logger, q *evqueue.Queue, states []*producerState, keys <-chan byte) {
	backoff := iox.Backoff{}
	var wasExhausted bool

	for {
		select {
		case key := <-keys:
			if !dispatchKey(logger, states, key) {
				return
			}
			continue
		case <-ctx.Done():
			return
		default:
		}

		ev, ok := q.Poll()
		if !ok {
			if exhausted := q.FreeLen() == 0; exhausted && !wasExhausted {
				logger.Warn("pool exhausted, producers are dropping events")
			} else if !exhausted {
				wasExhausted = false
			}
			wasExhausted = exhausted
			backoff.Wait()
			continue
		}
		backoff.Reset()
		fmt.Printf("t+%s producer=%d %s\n", time.Duration(ev.Timestamp), ev.ProducerID, ev.Kind)
	}
}

// dispatchKey applies one keystroke's effect and reports whether
// consumption should continue.
func dispatchKey(logger hclog.Logger, states []*producerState, key byte) bool {
	switch key {
	case 'q':
		logger.Info("shutdown requested")
		return false
	case 'p':
		for _, st := range states {
			toggle(&st.doWork)
		}
	case '1':
		if len(states) > 0 {
			toggle(&states[0].doWork)
		}
	case '2':
		if len(states) > 1 {
			toggle(&states[1].doWork)
		}
	}
	return true
}

func toggle(b *atomix.Bool) {
	b.Store(!b.Load())
}
