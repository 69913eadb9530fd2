package snapshot

import (
	"context"
	"time"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/requeue"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// Bootstrapper drives the scale-up snapshot state machine against the
// live cluster.
type Bootstrapper struct {
	Client client.Client
	Owner  client.FieldOwner
	Now    func() time.Time
}

// ReadyForScaleUp implements cnpgprojector.SnapshotGate: it runs one
// step of the state machine and reports true when the machine reaches
// Done, that is when a ready-to-use snapshot already exists for this
// instance or the last successful backup is at most an hour old.
func (b *Bootstrapper) ReadyForScaleUp(ctx context.Context, db *dbv1beta1.Database) (bool, error) {
	if db.Spec.Backup == nil || !db.Spec.Backup.VolumeSnapshot {
		// Snapshots not enabled: the gate never blocks, matching
		// spec.md §4.7's trigger condition (snapshots_enabled).
		return true, nil
	}

	observed, err := b.listObserved(ctx, db)
	if err != nil {
		return false, err
	}

	now := b.now()
	lastBackup := db.Status.FirstRecoverabilityTime
	var lastBackupTime *time.Time
	if lastBackup != nil {
		t := lastBackup.Time
		lastBackupTime = &t
	}

	// Input is fully derived from live cluster state for this single
	// call, so it is safe to drive the machine from Idle to its next
	// resting point (an effect, or Done) synchronously rather than
	// persisting State across reconciles.
	input := Input{Now: now, LastSuccessfulBackup: lastBackupTime, ObservedSnapshots: observed}
	state, effect := Idle, NoEffect
	for i := 0; i < 4 && effect == NoEffect && state != Done; i++ {
		state, effect = Transition(state, input)
	}
	switch effect {
	case EffectCreateSnapshot:
		if err := b.create(ctx, db, now); err != nil {
			return false, err
		}
		return false, nil
	case EffectRequeue:
		return false, nil
	}
	return state == Done, nil
}

func (b *Bootstrapper) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Bootstrapper) listObserved(ctx context.Context, db *dbv1beta1.Database) ([]ObservedSnapshot, error) {
	var list storagesnapshotv1.VolumeSnapshotList
	if err := b.Client.List(ctx, &list,
		client.InNamespace(db.Namespace),
		client.MatchingLabels{"cluster": db.Name},
	); err != nil {
		return nil, errors.Wrap(err, "listing volume snapshots")
	}

	out := make([]ObservedSnapshot, 0, len(list.Items))
	for _, vs := range list.Items {
		phase := ""
		if vs.Status != nil && vs.Status.ReadyToUse != nil && *vs.Status.ReadyToUse {
			phase = "ready-to-use"
		}
		out = append(out, ObservedSnapshot{Phase: phase, CreatedAt: vs.CreationTimestamp.Time})
	}
	return out, nil
}

func (b *Bootstrapper) create(ctx context.Context, db *dbv1beta1.Database, now time.Time) error {
	name := naming.BootstrapSnapshot(db, now)
	className := "csi-snapclass"

	vs := &storagesnapshotv1.VolumeSnapshot{
		TypeMeta: metav1.TypeMeta{APIVersion: storagesnapshotv1.SchemeGroupVersion.String(), Kind: "VolumeSnapshot"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: db.Namespace,
			Labels: map[string]string{
				"cluster":         db.Name,
				"immediateBackup": "true",
			},
			Annotations: map[string]string{
				"method":              "VolumeSnapshot",
				"online":              "true",
				"target":              "primary",
				"immediateCheckpoint": "true",
			},
		},
		Spec: storagesnapshotv1.VolumeSnapshotSpec{
			VolumeSnapshotClassName: &className,
			Source: storagesnapshotv1.VolumeSnapshotSource{
				PersistentVolumeClaimName: stringPtr(db.Name + "-1"),
			},
		},
	}

	if err := b.Client.Patch(ctx, vs, client.Apply, client.ForceOwnership, b.Owner); err != nil {
		return errors.Wrap(err, "creating scale-up volume snapshot")
	}
	return nil
}

func stringPtr(s string) *string { return &s }

// Requeue computes the Action to return to the top-level reconciler
// for the current scale-up gate evaluation.
func (b *Bootstrapper) Requeue(ready bool) requeue.Action {
	if ready {
		return requeue.Await()
	}
	return requeue.After(requeue.SnapshotPoll)
}
