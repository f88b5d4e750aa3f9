package engine

import (
	"sync"
	"testing"
)

func TestTripleBufferInitialRead(t *testing.T) {
	tb := NewTripleBuffer(42)
	if got := tb.Read(); got != 42 {
		t.Fatalf("Read() = %d, want 42", got)
	}
}

func TestTripleBufferUpdateAdoptsLatest(t *testing.T) {
	tb := NewTripleBuffer(0)
	tb.Write(1)
	tb.Write(2)
	tb.Write(3)

	if !tb.Update() {
		t.Fatal("Update() = false, want true after a Write")
	}
	if got := tb.Read(); got != 3 {
		t.Fatalf("Read() = %d, want 3 (latest write)", got)
	}
	if tb.Update() {
		t.Fatal("Update() = true on second call, want false (no new data)")
	}
}

func TestTripleBufferConcurrentWriteRead(t *testing.T) {
	tb := NewTripleBuffer(0)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			tb.Write(i)
		}
	}()

	for i := 0; i < 1000; i++ {
		tb.Update()
		_ = tb.Read()
	}
	wg.Wait()
	tb.Update()
	if got := tb.Read(); got != 1000 {
		t.Fatalf("final Read() = %d, want 1000", got)
	}
}

func TestTripleBufferStruct(t *testing.T) {
	type payload struct{ A, B int }
	tb := NewTripleBuffer(payload{A: 1, B: 2})
	tb.Write(payload{A: 5, B: 6})
	tb.Update()
	if got := tb.Read(); got != (payload{A: 5, B: 6}) {
		t.Fatalf("Read() = %+v, want {5 6}", got)
	}
}
