package engine

import (
	"context"
	"sync"
	"time"
)

type worldTicker interface {
	tickWorld(deltaSeconds float64)
}

type tickerFactory func(time.Duration) (<-chan time.Time, func())

type timeSource func() time.Time

// streamTicker drives the streaming update loop at a fixed rate, clamping
// wall-clock anomalies so a stalled host never produces a giant delta.
type streamTicker struct {
	target    worldTicker
	tick      time.Duration
	wg        sync.WaitGroup
	newTicker tickerFactory
	now       timeSource
}

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

func newStreamTicker(target worldTicker, tick time.Duration) *streamTicker {
	if tick <= 0 {
		tick = 33 * time.Millisecond
	}
	return &streamTicker{
		target:    target,
		tick:      tick,
		newTicker: defaultTickerFactory(),
		now:       time.Now,
	}
}

func (t *streamTicker) Start(ctx context.Context) {
	if t == nil || t.target == nil {
		return
	}
	t.wg.Add(1)
	go t.run(ctx)
}

func (t *streamTicker) run(ctx context.Context) {
	defer t.wg.Done()
	if t.newTicker == nil {
		t.newTicker = defaultTickerFactory()
	}
	if t.now == nil {
		t.now = time.Now
	}

	tickerC, stop := t.newTicker(t.tick)
	defer stop()

	last := t.now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tickerC:
			delta := now.Sub(last)
			if delta <= 0 {
				delta = t.tick
			} else if delta > 10*t.tick {
				delta = t.tick
			}
			last = now
			t.target.tickWorld(delta.Seconds())
		}
	}
}

func (t *streamTicker) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}
