package provider

import "sync"

// InitGuard runs an initialization function until it succeeds once.
// Failures are not remembered, so the next call tries again.
type InitGuard struct {
	mu   sync.Mutex
	done bool
}

// Do runs fn unless a previous call already succeeded.
func (g *InitGuard) Do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	g.done = true
	return nil
}

// Done reports whether initialization has succeeded.
func (g *InitGuard) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}
