package question

// History is a bounded FIFO of recently asked question texts. Each game owns
// one, so recent questions never leak between games. It is not safe for
// concurrent use; callers guard it with the owning game's lock.
type History struct {
	limit int
	items []string
}

// NewHistory creates a history that keeps at most limit entries. A limit of
// 0 or less disables recording.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add appends text, evicting the oldest entry once the limit is reached.
func (h *History) Add(text string) {
	if h.limit <= 0 {
		return
	}

	h.items = append(h.items, text)
	if len(h.items) > h.limit {
		h.items = h.items[1:]
	}
}

// Items returns the recorded texts, oldest first.
func (h *History) Items() []string {
	out := make([]string, len(h.items))
	copy(out, h.items)
	return out
}

// Clear drops all recorded texts.
func (h *History) Clear() {
	h.items = nil
}
