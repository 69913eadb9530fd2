package snapshot_test

import (
	"context"
	"testing"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/snapshot"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func newRestoreTarget(source string) *dbv1beta1.Database {
	return &dbv1beta1.Database{
		ObjectMeta: metav1.ObjectMeta{Name: "clone", Namespace: "ns"},
		Spec: dbv1beta1.DatabaseSpec{
			Restore: &dbv1beta1.RestoreSpec{SourceInstance: source},
		},
	}
}

func TestBind_NoRestoreSpecIsNoop(t *testing.T) {
	scheme := newScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	b := &snapshot.Binder{Client: c, Owner: "test"}

	db := &dbv1beta1.Database{ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"}}
	require.NoError(t, b.Bind(context.Background(), db))
}

func TestBind_NoSourceSnapshotReturnsNotFound(t *testing.T) {
	scheme := newScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	b := &snapshot.Binder{Client: c, Owner: "test"}

	err := b.Bind(context.Background(), newRestoreTarget("primary"))
	require.ErrorIs(t, err, snapshot.ErrSourceSnapshotNotFound)
}

func TestBind_NotYetReadyIsNoop(t *testing.T) {
	scheme := newScheme(t)
	target := newRestoreTarget("primary")
	existing := &storagesnapshotv1.VolumeSnapshot{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.RestoreVolumeSnapshot(target),
			Namespace: "ns",
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(existing).Build()
	b := &snapshot.Binder{Client: c, Owner: "test"}

	require.NoError(t, b.Bind(context.Background(), target))
}

func TestBind_ReadySnapshotPatchesContentUID(t *testing.T) {
	scheme := newScheme(t)
	target := newRestoreTarget("primary")
	ready := true

	vs := &storagesnapshotv1.VolumeSnapshot{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.RestoreVolumeSnapshot(target),
			Namespace: "ns",
			UID:       types.UID("vs-uid-1"),
		},
		Status: &storagesnapshotv1.VolumeSnapshotStatus{ReadyToUse: &ready},
	}
	content := &storagesnapshotv1.VolumeSnapshotContent{
		ObjectMeta: metav1.ObjectMeta{
			Name: naming.RestoreVolumeSnapshotContent(target),
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(vs, content).Build()
	b := &snapshot.Binder{Client: c, Owner: "test"}

	require.NoError(t, b.Bind(context.Background(), target))

	var got storagesnapshotv1.VolumeSnapshotContent
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Name: content.Name}, &got))
	require.Equal(t, vs.UID, got.Spec.VolumeSnapshotRef.UID)
}

func TestBind_AlreadyPatchedIsNoop(t *testing.T) {
	scheme := newScheme(t)
	target := newRestoreTarget("primary")
	ready := true

	vs := &storagesnapshotv1.VolumeSnapshot{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.RestoreVolumeSnapshot(target),
			Namespace: "ns",
			UID:       types.UID("vs-uid-1"),
		},
		Status: &storagesnapshotv1.VolumeSnapshotStatus{ReadyToUse: &ready},
	}
	content := &storagesnapshotv1.VolumeSnapshotContent{
		ObjectMeta: metav1.ObjectMeta{
			Name: naming.RestoreVolumeSnapshotContent(target),
		},
		Spec: storagesnapshotv1.VolumeSnapshotContentSpec{
			VolumeSnapshotRef: corev1.ObjectReference{UID: vs.UID},
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(vs, content).Build()
	b := &snapshot.Binder{Client: c, Owner: "test"}

	require.NoError(t, b.Bind(context.Background(), target))
}
