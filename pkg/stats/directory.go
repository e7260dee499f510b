package stats

import (
	"context"
	"sync"
)

// Directory resolves recipient display names.
type Directory interface {
	Name(ctx context.Context, recipientID string) (string, bool)
}

// MemoryDirectory is a static in-memory Directory.
type MemoryDirectory struct {
	names map[string]string
	mu    sync.RWMutex
}

func NewMemoryDirectory(names map[string]string) *MemoryDirectory {
	d := &MemoryDirectory{names: make(map[string]string, len(names))}
	for id, name := range names {
		d.names[id] = name
	}
	return d
}

// Set adds or replaces a name.
func (d *MemoryDirectory) Set(recipientID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[recipientID] = name
}

func (d *MemoryDirectory) Name(_ context.Context, recipientID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[recipientID]
	return name, ok
}
