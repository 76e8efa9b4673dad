package service

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestCaretOffsets(t *testing.T) {
	tests := []struct {
		body string
		want []int
	}{
		{"a$|b$|c", []int{2, 1}},
		{"$|x", []int{1}},
		{"x$|", []int{0}},
		{"Dear $|,\n\n$|", []int{3, 3}},
		{"no markers", nil},
	}
	for _, tt := range tests {
		got := caretOffsets(tt.body)
		if len(got) != len(tt.want) {
			t.Errorf("caretOffsets(%q) = %v, want %v", tt.body, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("caretOffsets(%q) = %v, want %v", tt.body, got, tt.want)
				break
			}
		}
	}
}

func TestCaretPlanNext(t *testing.T) {
	plan := &caretPlan{offsets: []int{2, 1}}
	if off, ok := plan.Next(); !ok || off != 2 {
		t.Fatalf("first Next = %d, %v", off, ok)
	}
	if off, ok := plan.Next(); !ok || off != 1 {
		t.Fatalf("second Next = %d, %v", off, ok)
	}
	if _, ok := plan.Next(); ok {
		t.Fatal("exhausted plan still yields")
	}
}

func TestExpandDate(t *testing.T) {
	if got := expandDate("plain text"); got != "plain text" {
		t.Errorf("body without tokens changed: %q", got)
	}
	year := strconv.Itoa(time.Now().Year())
	if got := expandDate("year: %Y"); !strings.Contains(got, year) {
		t.Errorf("expandDate(%%Y) = %q, want it to contain %q", got, year)
	}
}

func TestExpandSelectionToken(t *testing.T) {
	svc, kb, _ := newTestService(t)
	kb.selection = "picked"
	if got := svc.expand("sel: $S"); got != "sel: picked" {
		t.Errorf("expand = %q", got)
	}
}

func TestExpandArmsCaretPlan(t *testing.T) {
	svc, _, _ := newTestService(t)
	out := svc.expand("a$|b")
	if out != "ab" {
		t.Fatalf("expand = %q, want markers stripped", out)
	}
	if svc.caret == nil {
		t.Fatal("caret plan not armed")
	}
	if off, ok := svc.caret.Next(); !ok || off != 1 {
		t.Errorf("first offset = %d, %v, want 1", off, ok)
	}
}
