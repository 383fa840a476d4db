package notifier

import "sync"

// tally accumulates outcomes of concurrently replayed evaluations.
type tally struct {
	mu      sync.Mutex
	sent    int
	skipped int
}

func (t *tally) record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if o.NoOp() {
		t.skipped++
		return
	}
	t.sent += o.Sent
}

func (t *tally) totals() (sent, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent, t.skipped
}
