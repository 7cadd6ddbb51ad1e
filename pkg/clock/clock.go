package clock

import "time"

// Clock abstracts the current instant and ticker creation so that components
// scheduling work against wall time stay testable.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	Sleep(d time.Duration)
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (rt *realTicker) C() <-chan time.Time {
	return rt.t.C
}

func (rt *realTicker) Stop() {
	rt.t.Stop()
}
