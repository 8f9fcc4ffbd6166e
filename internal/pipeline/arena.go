package pipeline

import (
	"sort"
	"sync"

	"github.com/nao1215/warcsift/internal/model"
)

type arenaEntry struct {
	ordinal int
	page    *model.Page
}

// Arena accumulates retained pages of a batch. It is safe for concurrent use.
// A URL is kept once: the capture with the highest archive ordinal wins.
type Arena struct {
	mu         sync.Mutex
	byURL      map[string]int
	entries    []arenaEntry
	duplicates int
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{byURL: make(map[string]int)}
}

// Add stores page captured at ordinal. It reports false when the page was
// dropped or replaced an earlier capture of the same URL.
func (a *Arena) Add(ordinal int, page *model.Page) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i, ok := a.byURL[page.URL]; ok {
		a.duplicates++
		if ordinal > a.entries[i].ordinal {
			a.entries[i] = arenaEntry{ordinal: ordinal, page: page}
		}
		return false
	}
	a.byURL[page.URL] = len(a.entries)
	a.entries = append(a.entries, arenaEntry{ordinal: ordinal, page: page})
	return true
}

// Len returns the number of distinct pages.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Duplicates returns how many captures collided with an earlier URL.
func (a *Arena) Duplicates() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duplicates
}

// Pages returns the pages in archive order. The index of a page in the
// returned slice is its batch-local sequence number.
func (a *Arena) Pages() []*model.Page {
	a.mu.Lock()
	entries := make([]arenaEntry, len(a.entries))
	copy(entries, a.entries)
	a.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ordinal < entries[j].ordinal })
	pages := make([]*model.Page, len(entries))
	for i, e := range entries {
		pages[i] = e.page
	}
	return pages
}
