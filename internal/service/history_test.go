package service

import "testing"

func TestHistoryPushEvicts(t *testing.T) {
	var h history
	for i := 0; i < historyCap+10; i++ {
		h.Push(rune('a' + i%26))
	}
	if h.Len() != historyCap {
		t.Fatalf("Len = %d, want %d", h.Len(), historyCap)
	}
	// The oldest ten were evicted; the tail is intact.
	want := string(rune('a' + (historyCap+9)%26))
	got := h.String()
	if got[len(got)-1:] != want {
		t.Errorf("last = %q, want %q", got[len(got)-1:], want)
	}
}

func TestHistoryPop(t *testing.T) {
	var h history
	h.Pop() // empty pop is a no-op
	h.Push('a')
	h.Push('b')
	h.Pop()
	if h.String() != "a" {
		t.Errorf("String = %q, want %q", h.String(), "a")
	}
}

func TestHistoryRotate(t *testing.T) {
	var h history
	for _, r := range "abcd" {
		h.Push(r)
	}

	h.Rotate(1)
	if h.String() != "dabc" {
		t.Errorf("Rotate(1) = %q, want %q", h.String(), "dabc")
	}
	h.Rotate(-1)
	if h.String() != "abcd" {
		t.Errorf("Rotate(-1) = %q, want %q", h.String(), "abcd")
	}
	h.Rotate(-2)
	if h.String() != "cdab" {
		t.Errorf("Rotate(-2) = %q, want %q", h.String(), "cdab")
	}
	h.Rotate(4)
	if h.String() != "cdab" {
		t.Errorf("full rotation changed order: %q", h.String())
	}
}

func TestHistoryTyped(t *testing.T) {
	var h history
	if h.Typed() != "" {
		t.Errorf("empty Typed = %q", h.Typed())
	}
	for _, r := range "addr " {
		h.Push(r)
	}
	if h.Typed() != "addr" {
		t.Errorf("Typed = %q, want %q", h.Typed(), "addr")
	}
}
