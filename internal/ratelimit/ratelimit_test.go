package ratelimit

import (
	"testing"
	"time"
)

func TestDebouncer_AllowAndAccept(t *testing.T) {
	d := NewDebouncer(30*time.Second, 5*time.Minute)
	now := time.Unix(1_700_000_000, 0)

	if !d.Allow("drv", now) {
		t.Fatal("first submission must be allowed")
	}
	d.Accept("drv", now)

	if d.Allow("drv", now.Add(10*time.Second)) {
		t.Fatal("submission 10s after accept must be debounced")
	}
	if d.Allow("drv", now.Add(29*time.Second)) {
		t.Fatal("submission just under the interval must be debounced")
	}
	if !d.Allow("drv", now.Add(30*time.Second)) {
		t.Fatal("submission at the interval must be allowed")
	}
}

func TestDebouncer_AllowDoesNotConsume(t *testing.T) {
	d := NewDebouncer(30*time.Second, 5*time.Minute)
	now := time.Unix(1_700_000_000, 0)

	// Allow without Accept, as happens when validation rejects the report
	if !d.Allow("drv", now) {
		t.Fatal("first submission must be allowed")
	}
	if !d.Allow("drv", now.Add(time.Second)) {
		t.Fatal("a checked-but-unaccepted submission must not consume the slot")
	}
}

func TestDebouncer_KeysIndependent(t *testing.T) {
	d := NewDebouncer(30*time.Second, 5*time.Minute)
	now := time.Unix(1_700_000_000, 0)

	d.Accept("a", now)
	if !d.Allow("b", now) {
		t.Fatal("keys must not interfere")
	}
}

func TestDebouncer_Sweep(t *testing.T) {
	d := NewDebouncer(30*time.Second, 5*time.Minute)
	now := time.Unix(1_700_000_000, 0)

	d.Accept("old", now)
	d.Accept("fresh", now.Add(4*time.Minute))

	evicted := d.Sweep(now.Add(5*time.Minute + time.Second))
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 remaining key, got %d", d.Len())
	}
	// evicted key starts fresh
	if !d.Allow("old", now.Add(5*time.Minute+2*time.Second)) {
		t.Fatal("evicted key must be allowed again")
	}
}

func TestFixedWindow_Limit(t *testing.T) {
	w := NewFixedWindow(3, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	for i := 0; i < 3; i++ {
		if !w.Allow("ip:frag", now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("request %d must be allowed", i+1)
		}
	}
	if w.Allow("ip:frag", now.Add(10*time.Second)) {
		t.Fatal("request over the limit must be rejected")
	}
	// new window resets the count
	if !w.Allow("ip:frag", now.Add(61*time.Second)) {
		t.Fatal("request in the next window must be allowed")
	}
}

func TestFixedWindow_KeysIndependent(t *testing.T) {
	w := NewFixedWindow(1, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	if !w.Allow("a", now) {
		t.Fatal("first request for a must be allowed")
	}
	if !w.Allow("b", now) {
		t.Fatal("first request for b must be allowed")
	}
	if w.Allow("a", now.Add(time.Second)) {
		t.Fatal("second request for a must be rejected")
	}
}

func TestFixedWindow_Sweep(t *testing.T) {
	w := NewFixedWindow(5, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	w.Allow("a", now)
	w.Allow("b", now.Add(50*time.Second))

	if evicted := w.Sweep(now.Add(70 * time.Second)); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 remaining bucket, got %d", w.Len())
	}
}
