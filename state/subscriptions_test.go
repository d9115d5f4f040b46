package state

import "testing"

func TestSubscriptions_Clear(t *testing.T) {
	o := newTestOwner()
	count := NewStateful(o, NewKey("count"), 0)
	var subs Subscriptions

	calls := 0
	Observe(&subs, count, func(old, new int) { calls++ })
	Observe(&subs, count, func(old, new int) { calls++ })
	if subs.Len() != 2 {
		t.Fatalf("expected 2 tracked subscriptions, got %d", subs.Len())
	}

	count.Set(1)
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}

	subs.Clear()
	count.Set(2)
	if calls != 2 {
		t.Fatalf("expected no calls after clear, got %d", calls)
	}
	if subs.Len() != 0 {
		t.Fatalf("expected no tracked subscriptions after clear")
	}
}

func TestSubscriptions_NilSafe(t *testing.T) {
	var subs *Subscriptions
	subs.Add(func() {})
	subs.Clear()
	Observe[int](subs, nil, nil)
	if subs.Len() != 0 {
		t.Fatalf("expected nil subscriptions to be empty")
	}
}
