package queue

import "testing"

func TestDropOldestPushWithinCapacity(t *testing.T) {
	q := New[int](3)
	q.Push(1)
	q.Push(2)
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}
	if q.Dropped() != 0 {
		t.Fatalf("expected 0 dropped, got %d", q.Dropped())
	}
}

func TestDropOldestEvictsOldest(t *testing.T) {
	q := New[int](2)
	q.Push(1)
	q.Push(2)
	dropped := q.Push(3)
	if !dropped {
		t.Fatal("expected Push to report a drop once at capacity")
	}
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}

	first, ok := q.Pop()
	if !ok || first != 2 {
		t.Fatalf("expected oldest surviving item 2, got %v (ok=%v)", first, ok)
	}
	second, ok := q.Pop()
	if !ok || second != 3 {
		t.Fatalf("expected 3, got %v (ok=%v)", second, ok)
	}
}

func TestDropOldestPopEmpty(t *testing.T) {
	q := New[string](1)
	_, ok := q.Pop()
	if ok {
		t.Fatal("expected Pop on empty queue to report ok=false")
	}
}
