package chronicle

import (
	"sync"
	"testing"
)

func TestPruneFlushesEvictedPrefix(t *testing.T) {
	var flushed []Entry
	l := New(func(evicted []Entry) { flushed = append(flushed, evicted...) })

	for i := 0; i < keepRecent+50; i++ {
		l.Append(uint64(i), "test", "event %d", i)
	}
	l.Prune()

	if got := l.Len(); got != keepRecent {
		t.Fatalf("resident entries = %d, want %d", got, keepRecent)
	}
	if len(flushed) != 50 {
		t.Fatalf("flushed = %d entries, want 50", len(flushed))
	}
	if flushed[0].Tick != 0 || flushed[49].Tick != 49 {
		t.Fatalf("flushed the wrong entries: ticks %d..%d", flushed[0].Tick, flushed[49].Tick)
	}

	l.Drain()
	if got := l.Len(); got != 0 {
		t.Fatalf("entries remain after drain: %d", got)
	}
	if len(flushed) != keepRecent+50 {
		t.Fatalf("drain did not flush the remainder: total flushed %d", len(flushed))
	}
}

func TestConcurrentAppends(t *testing.T) {
	l := New(nil)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Append(uint64(i), "test", "worker %d event %d", w, i)
			}
		}(w)
	}
	wg.Wait()

	if got := l.Len(); got != 800 {
		t.Fatalf("entries = %d, want 800", got)
	}
}

func TestCountSinceFiltersByTickAndCategory(t *testing.T) {
	l := New(nil)
	for i := 0; i < 10; i++ {
		l.Append(uint64(i), "birth", "child %d", i)
		l.Append(uint64(i), "death", "elder %d", i)
	}

	if got := l.CountSince(5, "birth"); got != 5 {
		t.Fatalf("births since tick 5 = %d, want 5", got)
	}
	if got := l.CountSince(0, "death"); got != 10 {
		t.Fatalf("deaths since tick 0 = %d, want 10", got)
	}
	if got := l.CountSince(0, "war"); got != 0 {
		t.Fatalf("wars since tick 0 = %d, want 0", got)
	}
}

func TestRecentReturnsNewest(t *testing.T) {
	l := New(nil)
	for i := 0; i < 10; i++ {
		l.Append(uint64(i), "test", "event %d", i)
	}
	got := l.Recent(3)
	if len(got) != 3 || got[0].Tick != 7 || got[2].Tick != 9 {
		t.Fatalf("recent(3) returned wrong window: %+v", got)
	}
}
