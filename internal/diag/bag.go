package diag

import (
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use so a
// single bag can sit behind several per-file reporters.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   uint16
}

func NewBag(limit int) *Bag {
	capacity, err := safecast.Conv[uint16](limit)
	if err != nil || limit <= 0 {
		capacity = 256
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(capacity), 16)),
		max:   capacity,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.hasAtLeast(SevError)
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.hasAtLeast(SevWarning)
}

func (b *Bag) hasAtLeast(sev Severity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Filter returns the diagnostics with the given code.
func (b *Bag) Filter(code Code) []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Diagnostic
	for _, d := range b.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	incoming := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	newTotal := len(b.items) + len(incoming)
	if newTotal > int(b.max) {
		if total, err := safecast.Conv[uint16](newTotal); err == nil {
			b.max = total
		} else {
			b.max = ^uint16(0)
		}
	}
	for _, d := range incoming {
		if len(b.items) >= int(b.max) {
			break
		}
		b.items = append(b.items, d)
	}
}

// Sort сортирует диагностики по: path, severity (desc), code, subject, message
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		return di.Message < dj.Message
	})
}
