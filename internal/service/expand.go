package service

import (
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const caretMarker = "$|"

// caretPlan is the sequence of caret movements a replacement with $|
// markers arms. The first offset is consumed right after sending, moving
// the caret left to the first marker; each later offset is consumed by a
// Tab press, moving right to the next one.
type caretPlan struct {
	offsets []int
	next    int
}

// Next returns the next stop, false when the plan is exhausted.
func (c *caretPlan) Next() (int, bool) {
	if c.next >= len(c.offsets) {
		return 0, false
	}
	off := c.offsets[c.next]
	c.next++
	return off, true
}

// caretOffsets computes the movement distances for a body still containing
// its markers. The first distance runs from the end of the stripped text
// back to the first marker; each subsequent one runs forward between
// adjacent markers. Distances count characters, not bytes.
func caretOffsets(body string) []int {
	count := strings.Count(body, caretMarker)
	if count == 0 {
		return nil
	}
	runes := []rune(body)
	offsets := make([]int, 0, count)
	initIndex := 0
	for n := 0; n < count; n++ {
		idx := findMarker(runes)
		var off int
		if n == 0 {
			initIndex = idx
			off = len(runes) - initIndex - count*2
		} else {
			off = idx - initIndex
			initIndex += off
		}
		runes = append(runes[:idx], runes[idx+2:]...)
		offsets = append(offsets, off)
	}
	return offsets
}

func findMarker(runes []rune) int {
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == '$' && runes[i+1] == '|' {
			return i
		}
	}
	return -1
}

// expand renders a phrase body: date tokens first over the whole text,
// then clipboard and selection insertions, then the caret markers are
// stripped and their plan armed. Clipboard reads only happen when the
// token is present, they shell out.
func (s *Service) expand(body string) string {
	out := expandDate(body)
	if strings.Contains(out, "$C") {
		out = strings.ReplaceAll(out, "$C", s.kb.ClipboardText())
	}
	if strings.Contains(out, "$S") {
		out = strings.ReplaceAll(out, "$S", s.kb.SelectionText())
	}
	if strings.Contains(out, caretMarker) {
		s.caret = &caretPlan{offsets: caretOffsets(out)}
		out = strings.ReplaceAll(out, caretMarker, "")
	}
	return out
}

// expandDate runs the body through strftime. Bodies without % pass through
// untouched; a malformed pattern falls back to the literal text.
func expandDate(body string) string {
	if !strings.Contains(body, "%") {
		return body
	}
	out, err := strftime.Format(body, time.Now())
	if err != nil {
		return body
	}
	return out
}

func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
