package client

import "sync"

// fence issues monotonic request numbers per resource key so responses that
// arrive after a newer request for the same resource can be discarded.
type fence struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func newFence() *fence {
	return &fence{latest: make(map[string]uint64)}
}

// next records a new request for key and returns its number.
func (f *fence) next(key string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[key]++
	return f.latest[key]
}

// current reports whether seq is still the newest request for key.
func (f *fence) current(key string, seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[key] == seq
}
