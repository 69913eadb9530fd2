package snapshot

import (
	"context"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// ErrSourceSnapshotNotFound means the source instance named by
// RestoreSpec.SourceInstance has no ready-to-use snapshot yet.
var ErrSourceSnapshotNotFound = errors.New("no ready-to-use snapshot found for source instance")

// Binder synthesizes the derived VolumeSnapshotContent/VolumeSnapshot
// pair a restore target binds to, per spec.md §4.7's restore steps:
// find the source instance's most recent ready snapshot, read the
// driver and snapshot handle off its bound VolumeSnapshotContent, mint
// a new VolumeSnapshotContent wrapping that same handle, then a
// VolumeSnapshot that pre-binds to it by name.
type Binder struct {
	Client client.Client
	Owner  client.FieldOwner
}

// Bind ensures the restore-target's derived VS/VSC pair exists and is
// bound to the source instance's latest ready snapshot, then completes
// the binding invariant once the VS turns ready: the VSC's
// volumeSnapshotRef.uid must equal the VS's own uid.
func (r *Binder) Bind(ctx context.Context, db *dbv1beta1.Database) error {
	if db.Spec.Restore == nil {
		return nil
	}

	vsName := naming.RestoreVolumeSnapshot(db)
	existing := &storagesnapshotv1.VolumeSnapshot{}
	err := r.Client.Get(ctx, client.ObjectKey{Namespace: db.Namespace, Name: vsName}, existing)
	if err == nil {
		return r.completeBinding(ctx, db, existing)
	}
	if !apierrors.IsNotFound(err) {
		return errors.Wrap(err, "getting restore volume snapshot")
	}

	sourceVS, err := r.latestReadySnapshot(ctx, db.Namespace, db.Spec.Restore.SourceInstance)
	if err != nil {
		return err
	}
	if sourceVS.Status.BoundVolumeSnapshotContentName == nil {
		return errors.New("source snapshot is ready but has no bound content")
	}

	sourceContent := &storagesnapshotv1.VolumeSnapshotContent{}
	if err := r.Client.Get(ctx, client.ObjectKey{Name: *sourceVS.Status.BoundVolumeSnapshotContentName}, sourceContent); err != nil {
		return errors.Wrap(err, "getting source volume snapshot content")
	}
	if sourceContent.Status == nil || sourceContent.Status.SnapshotHandle == nil {
		return errors.New("source volume snapshot content has no snapshot handle yet")
	}

	contentName := naming.RestoreVolumeSnapshotContent(db)
	content := &storagesnapshotv1.VolumeSnapshotContent{
		TypeMeta: metav1.TypeMeta{APIVersion: storagesnapshotv1.SchemeGroupVersion.String(), Kind: "VolumeSnapshotContent"},
		ObjectMeta: metav1.ObjectMeta{
			Name: contentName,
		},
		Spec: storagesnapshotv1.VolumeSnapshotContentSpec{
			DeletionPolicy: storagesnapshotv1.VolumeSnapshotContentRetain,
			Driver:         sourceContent.Spec.Driver,
			Source: storagesnapshotv1.VolumeSnapshotContentSource{
				SnapshotHandle: sourceContent.Status.SnapshotHandle,
			},
			VolumeSnapshotClassName: sourceContent.Spec.VolumeSnapshotClassName,
			VolumeSnapshotRef: corev1.ObjectReference{
				Name:      vsName,
				Namespace: db.Namespace,
			},
		},
	}
	if err := r.Client.Patch(ctx, content, client.Apply, client.ForceOwnership, r.Owner); err != nil {
		return errors.Wrap(err, "applying restore volume snapshot content")
	}

	vs := &storagesnapshotv1.VolumeSnapshot{
		TypeMeta: metav1.TypeMeta{APIVersion: storagesnapshotv1.SchemeGroupVersion.String(), Kind: "VolumeSnapshot"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      vsName,
			Namespace: db.Namespace,
			Labels: map[string]string{
				"cluster": db.Name,
			},
		},
		Spec: storagesnapshotv1.VolumeSnapshotSpec{
			VolumeSnapshotClassName: sourceContent.Spec.VolumeSnapshotClassName,
			Source: storagesnapshotv1.VolumeSnapshotSource{
				VolumeSnapshotContentName: &content.Name,
			},
		},
	}
	if err := r.Client.Patch(ctx, vs, client.Apply, client.ForceOwnership, r.Owner); err != nil {
		return errors.Wrap(err, "applying restore volume snapshot")
	}

	return nil
}

// completeBinding waits for the restore-target VolumeSnapshot to turn
// ready, then patches its VolumeSnapshotContent's volumeSnapshotRef.uid
// to the VS's own uid, satisfying the pre-provisioned binding
// invariant (spec.md §3/§8): it's a no-op until the VS is ready, and
// a no-op again once the uid already matches.
func (r *Binder) completeBinding(ctx context.Context, db *dbv1beta1.Database, vs *storagesnapshotv1.VolumeSnapshot) error {
	if vs.Status == nil || vs.Status.ReadyToUse == nil || !*vs.Status.ReadyToUse {
		return nil
	}

	contentName := naming.RestoreVolumeSnapshotContent(db)
	content := &storagesnapshotv1.VolumeSnapshotContent{}
	if err := r.Client.Get(ctx, client.ObjectKey{Name: contentName}, content); err != nil {
		return errors.Wrap(err, "getting restore volume snapshot content")
	}
	if content.Spec.VolumeSnapshotRef.UID == vs.UID {
		return nil
	}

	patch := content.DeepCopy()
	patch.Spec.VolumeSnapshotRef.UID = vs.UID
	if err := r.Client.Patch(ctx, patch, client.MergeFrom(content)); err != nil {
		return errors.Wrap(err, "patching restore volume snapshot content uid")
	}
	return nil
}

func (r *Binder) latestReadySnapshot(ctx context.Context, namespace, sourceInstance string) (*storagesnapshotv1.VolumeSnapshot, error) {
	var list storagesnapshotv1.VolumeSnapshotList
	if err := r.Client.List(ctx, &list,
		client.InNamespace(namespace),
		client.MatchingLabels{"cluster": sourceInstance},
	); err != nil {
		return nil, errors.Wrap(err, "listing source snapshots")
	}

	var latest *storagesnapshotv1.VolumeSnapshot
	for i := range list.Items {
		s := &list.Items[i]
		if s.Status == nil || s.Status.ReadyToUse == nil || !*s.Status.ReadyToUse {
			continue
		}
		if latest == nil || s.CreationTimestamp.After(latest.CreationTimestamp.Time) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrSourceSnapshotNotFound
	}
	return latest, nil
}
