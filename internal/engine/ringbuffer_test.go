package engine

import "testing"

func TestRingBufferCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 256: 256, 257: 512, 4096: 4096}
	for in, want := range cases {
		rb := NewRingBuffer[int](in)
		if got := rb.Capacity(); got != want {
			t.Errorf("NewRingBuffer(%d).Capacity() = %d, want %d", in, got, want)
		}
	}
}

func TestRingBufferPushPopOrder(t *testing.T) {
	rb := NewRingBuffer[int](4)
	for i := 1; i <= 4; i++ {
		if !rb.Push(i) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}
	for i := 1; i <= 4; i++ {
		v, ok := rb.Pop()
		if !ok || v != i {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := rb.Pop(); ok {
		t.Fatal("Pop() on empty buffer returned ok=true")
	}
}

func TestRingBufferDropsOnFull(t *testing.T) {
	rb := NewRingBuffer[int](2)
	if !rb.Push(1) || !rb.Push(2) {
		t.Fatal("expected first two pushes to succeed")
	}
	if rb.Push(3) {
		t.Fatal("Push on full buffer returned true, want false (dropped)")
	}
	if rb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rb.Len())
	}
	v, _ := rb.Pop()
	if v != 1 {
		t.Fatalf("Pop() = %d, want 1 (the dropped push must not have been enqueued)", v)
	}
}

func TestRingBufferLen(t *testing.T) {
	rb := NewRingBuffer[int](8)
	if rb.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", rb.Len())
	}
	rb.Push(1)
	rb.Push(2)
	if rb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rb.Len())
	}
	rb.Pop()
	if rb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rb.Len())
	}
}
