// Package snapshot implements C7: the snapshot-based replica bootstrap
// state machine and the restore-source binding protocol.
package snapshot

import "time"

// State is one of the five explicit states named in spec.md §4.7.
type State int

const (
	Idle State = iota
	Evaluate
	WaitIfActive
	CreateSnapshot
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Evaluate:
		return "Evaluate"
	case WaitIfActive:
		return "WaitIfActive"
	case CreateSnapshot:
		return "CreateSnapshot"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// SideEffect is what the caller must do as a consequence of a
// transition: nothing, create a snapshot, or requeue.
type SideEffect int

const (
	NoEffect SideEffect = iota
	EffectCreateSnapshot
	EffectRequeue
)

// ObservedSnapshot is the minimal view of a cluster's VolumeSnapshots
// the transition function needs.
type ObservedSnapshot struct {
	Phase     string // "", "started", "running", "pending", "finalizing", "ready-to-use", or any other terminal phase
	CreatedAt time.Time
}

const activeWindow = 60 * time.Minute

// activePhases are CSI-reported phases known to still be in progress;
// an object in one of these never goes stale regardless of age. An
// empty phase means the CSI driver hasn't populated status yet, which
// is only treated as active within activeWindow of creation so a
// snapshot whose status never populates doesn't block forever.
var activePhases = map[string]bool{
	"started":    true,
	"running":    true,
	"pending":    true,
	"finalizing": true,
}

func hasReady(snapshots []ObservedSnapshot) bool {
	for _, s := range snapshots {
		if s.Phase == "ready-to-use" {
			return true
		}
	}
	return false
}

func hasActive(snapshots []ObservedSnapshot, now time.Time) bool {
	for _, s := range snapshots {
		if s.Phase == "ready-to-use" {
			continue
		}
		if activePhases[s.Phase] || now.Sub(s.CreatedAt) < activeWindow {
			return true
		}
	}
	return false
}

// Input bundles everything the pure transition function needs.
type Input struct {
	Now                  time.Time
	LastSuccessfulBackup *time.Time
	ObservedSnapshots    []ObservedSnapshot
}

// Transition is the pure (current, input) -> (next, effect) function
// named in the REDESIGN FLAGS: all side effects are reified as a
// SideEffect value, never performed inline.
func Transition(current State, in Input) (State, SideEffect) {
	switch current {
	case Idle:
		return Evaluate, NoEffect

	case Evaluate:
		if in.LastSuccessfulBackup != nil && in.Now.Sub(*in.LastSuccessfulBackup) <= activeWindow {
			return Done, NoEffect
		}
		return WaitIfActive, NoEffect

	case WaitIfActive:
		if hasReady(in.ObservedSnapshots) {
			return Done, NoEffect
		}
		if hasActive(in.ObservedSnapshots, in.Now) {
			return WaitIfActive, EffectRequeue
		}
		return CreateSnapshot, EffectCreateSnapshot

	case CreateSnapshot:
		// The caller creates the snapshot as the side effect fires;
		// control returns to WaitIfActive until it reports ready.
		return WaitIfActive, EffectRequeue

	case Done:
		return Done, NoEffect

	default:
		return Idle, NoEffect
	}
}
