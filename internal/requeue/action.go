// Package requeue defines the typed Action every component phase
// returns, per spec.md §4.10/§7: either wait for the next watch event,
// or requeue after a bounded delay. Expected waits use short delays;
// unexpected errors use longer ones.
package requeue

import "time"

// Kind distinguishes the two Action shapes.
type Kind int

const (
	// AwaitChange means: do nothing further until the next watch event
	// or periodic resync.
	AwaitChange Kind = iota
	// Requeue means: come back after Delay even without a new event.
	Requeue
)

// Action is returned by every reconcile phase.
type Action struct {
	Kind  Kind
	Delay time.Duration
}

// Await is the zero-wait, no-op outcome.
func Await() Action { return Action{Kind: AwaitChange} }

// After builds a Requeue action with the given delay.
func After(d time.Duration) Action { return Action{Kind: Requeue, Delay: d} }

// Standard delays named in spec.md §4.10/§5.
const (
	Short    = 5 * time.Second
	SnapshotPoll = 30 * time.Second
	Medium   = 10 * time.Second
	Long     = 5 * time.Minute
)

// IsAwait reports whether a is a no-op wait.
func (a Action) IsAwait() bool { return a.Kind == AwaitChange }

// Sooner returns whichever of a and b requeues first; an AwaitChange
// loses to any concrete Requeue, and two AwaitChanges stay AwaitChange.
func Sooner(a, b Action) Action {
	if a.Kind == AwaitChange {
		return b
	}
	if b.Kind == AwaitChange {
		return a
	}
	if a.Delay <= b.Delay {
		return a
	}
	return b
}
