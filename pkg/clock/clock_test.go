package clock

import (
	"testing"
	"time"
)

func TestFake_NowAndAdvance(t *testing.T) {
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	if got := fake.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	fake.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if got := fake.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}

	fake.Set(start)
	if got := fake.Now(); !got.Equal(start) {
		t.Fatalf("Now() after Set = %v, want %v", got, start)
	}
}

func TestFake_TickerFiresOnlyOnTick(t *testing.T) {
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	fake := NewFake(start)
	ticker := fake.NewTicker(5 * time.Minute)

	select {
	case <-ticker.C():
		t.Fatal("ticker fired before Tick was called")
	default:
	}

	fake.Tick()
	select {
	case got := <-ticker.C():
		if !got.Equal(start) {
			t.Fatalf("tick carried %v, want %v", got, start)
		}
	default:
		t.Fatal("ticker did not fire after Tick")
	}
}

func TestFake_StoppedTickerStaysSilent(t *testing.T) {
	fake := NewFake(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	ticker := fake.NewTicker(time.Minute)
	ticker.Stop()

	fake.Tick()
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestReal_TickerDelivers(t *testing.T) {
	c := Real()
	ticker := c.NewTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not deliver within a second")
	}
}
