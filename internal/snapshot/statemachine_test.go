package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func drive(input Input) (State, SideEffect) {
	state, effect := Idle, NoEffect
	for i := 0; i < 4 && effect == NoEffect && state != Done; i++ {
		state, effect = Transition(state, input)
	}
	return state, effect
}

func TestTransition_RecentBackupIsDone(t *testing.T) {
	now := time.Now()
	last := now.Add(-5 * time.Minute)
	state, effect := drive(Input{Now: now, LastSuccessfulBackup: &last})
	require.Equal(t, Done, state)
	require.Equal(t, NoEffect, effect)
}

func TestTransition_NoSnapshotsCreatesOne(t *testing.T) {
	now := time.Now()
	state, effect := drive(Input{Now: now})
	require.Equal(t, CreateSnapshot, state)
	require.Equal(t, EffectCreateSnapshot, effect)
}

func TestTransition_ActiveSnapshotRequeues(t *testing.T) {
	now := time.Now()
	state, effect := drive(Input{
		Now: now,
		ObservedSnapshots: []ObservedSnapshot{
			{Phase: "running", CreatedAt: now.Add(-time.Minute)},
		},
	})
	require.Equal(t, WaitIfActive, state)
	require.Equal(t, EffectRequeue, effect)
}

func TestTransition_ReadySnapshotIsDone(t *testing.T) {
	now := time.Now()
	state, effect := drive(Input{
		Now: now,
		ObservedSnapshots: []ObservedSnapshot{
			{Phase: "ready-to-use", CreatedAt: now.Add(-2 * time.Hour)},
		},
	})
	require.Equal(t, Done, state)
	require.Equal(t, NoEffect, effect)
}

func TestTransition_StaleUnreadySnapshotCreatesAnother(t *testing.T) {
	now := time.Now()
	state, effect := drive(Input{
		Now: now,
		ObservedSnapshots: []ObservedSnapshot{
			{Phase: "", CreatedAt: now.Add(-2 * time.Hour)},
		},
	})
	require.Equal(t, CreateSnapshot, state)
	require.Equal(t, EffectCreateSnapshot, effect)
}
