package usecase

import "sync"

// inflight admits at most one pipeline per owner at a time.
type inflight struct {
	mu     sync.Mutex
	owners map[string]struct{}
}

func (f *inflight) acquire(owner string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owners == nil {
		f.owners = make(map[string]struct{})
	}
	if _, busy := f.owners[owner]; busy {
		return nil, false
	}
	f.owners[owner] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.owners, owner)
		f.mu.Unlock()
	}, true
}
