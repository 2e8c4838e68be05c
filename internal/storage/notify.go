package storage

import "sync"

// Notifier fans out coalesced change signals to per-group watchers.
// The zero value is ready to use.
type Notifier struct {
	mu       sync.Mutex
	watchers map[int64]map[int]chan struct{}
	nextID   int
}

// Watch registers a watcher for groupID. The returned channel has a buffer
// of one so notification never blocks a writer; call the cancel func to
// release the watcher.
func (n *Notifier) Watch(groupID int64) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.watchers == nil {
		n.watchers = make(map[int64]map[int]chan struct{})
	}
	if n.watchers[groupID] == nil {
		n.watchers[groupID] = make(map[int]chan struct{})
	}
	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	n.watchers[groupID][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.watchers[groupID], id)
	}
	return ch, cancel
}

// Notify signals every watcher of groupID. A watcher that already has a
// pending signal is skipped; the pending signal covers this change too.
func (n *Notifier) Notify(groupID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.watchers[groupID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
