package service

// historyCap bounds the input history; hotstrings longer than this cannot
// match, which is far beyond any sane abbreviation.
const historyCap = 128

// history is the bounded ring of recently typed characters the hotstring
// matcher runs against. Arrow keys rotate it the way a deque rotates, so
// moving the caret within a word keeps the surrounding characters
// matchable.
type history struct {
	runes []rune
}

// Push appends a typed character, evicting the oldest when full.
func (h *history) Push(r rune) {
	if len(h.runes) == historyCap {
		copy(h.runes, h.runes[1:])
		h.runes = h.runes[:historyCap-1]
	}
	h.runes = append(h.runes, r)
}

// Pop removes the most recent character, mirroring a backspace.
func (h *history) Pop() {
	if len(h.runes) > 0 {
		h.runes = h.runes[:len(h.runes)-1]
	}
}

// Rotate shifts the ring n steps: positive moves the tail to the front
// (caret moved left), negative the front to the tail (caret moved right).
func (h *history) Rotate(n int) {
	size := len(h.runes)
	if size < 2 || n%size == 0 {
		return
	}
	n = ((n % size) + size) % size
	rotated := make([]rune, 0, size)
	rotated = append(rotated, h.runes[size-n:]...)
	rotated = append(rotated, h.runes[:size-n]...)
	h.runes = rotated
}

// Clear empties the history.
func (h *history) Clear() {
	h.runes = h.runes[:0]
}

func (h *history) Len() int {
	return len(h.runes)
}

// Typed returns the history excluding the most recent character, which is
// the trigger character during hotstring matching.
func (h *history) Typed() string {
	if len(h.runes) == 0 {
		return ""
	}
	return string(h.runes[:len(h.runes)-1])
}

func (h *history) String() string {
	return string(h.runes)
}
