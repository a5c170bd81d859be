// Package state tracks the destination paths produced during a single run so
// collisions between composed file names can be detected. Nothing is
// persisted; stable naming alone is what makes re-runs safe.
package state

// Tracker counts how often each destination path has been produced. It is
// used by exactly one worker, so no locking is needed.
type Tracker struct {
	written map[string]int
}

type Snapshot struct {
	Paths      int
	Collisions int
}

func NewTracker() *Tracker {
	return &Tracker{written: make(map[string]int)}
}

// Record notes that path is about to be written and returns how many times
// it was produced before during this run.
func (t *Tracker) Record(path string) int {
	prior := t.written[path]
	t.written[path]++
	return prior
}

func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{Paths: len(t.written)}
	for _, count := range t.written {
		if count > 1 {
			snap.Collisions += count - 1
		}
	}
	return snap
}
