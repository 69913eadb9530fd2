package snapshot_test

import (
	"context"
	"testing"
	"time"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/tembo-io/pgdataplane-operator/internal/snapshot"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, storagesnapshotv1.AddToScheme(scheme))
	require.NoError(t, dbv1beta1.AddToScheme(scheme))
	return scheme
}

func newDatabase(snapshotBackup bool) *dbv1beta1.Database {
	db := &dbv1beta1.Database{
		ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"},
	}
	if snapshotBackup {
		db.Spec.Backup = &dbv1beta1.BackupSpec{VolumeSnapshot: true}
	}
	return db
}

func TestReadyForScaleUp_NotEnabled(t *testing.T) {
	scheme := newScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	b := &snapshot.Bootstrapper{Client: c, Owner: "test"}

	ready, err := b.ReadyForScaleUp(context.Background(), newDatabase(false))
	require.NoError(t, err)
	require.True(t, ready)
}

func TestReadyForScaleUp_NoExistingSnapshotCreatesOne(t *testing.T) {
	scheme := newScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	b := &snapshot.Bootstrapper{Client: c, Owner: "test"}

	ready, err := b.ReadyForScaleUp(context.Background(), newDatabase(true))
	require.NoError(t, err)
	require.False(t, ready)

	var list storagesnapshotv1.VolumeSnapshotList
	require.NoError(t, c.List(context.Background(), &list, client.InNamespace("ns")))
	require.Len(t, list.Items, 1)
	require.Equal(t, "acme", list.Items[0].Labels["cluster"])
}

func TestReadyForScaleUp_ReadySnapshotUnblocks(t *testing.T) {
	scheme := newScheme(t)
	ready := true
	existing := &storagesnapshotv1.VolumeSnapshot{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "acme-existing",
			Namespace: "ns",
			Labels:    map[string]string{"cluster": "acme"},
		},
		Status: &storagesnapshotv1.VolumeSnapshotStatus{ReadyToUse: &ready},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(existing).Build()
	b := &snapshot.Bootstrapper{Client: c, Owner: "test"}

	got, err := b.ReadyForScaleUp(context.Background(), newDatabase(true))
	require.NoError(t, err)
	require.True(t, got)
}

func TestReadyForScaleUp_ActiveSnapshotWaits(t *testing.T) {
	scheme := newScheme(t)
	existing := &storagesnapshotv1.VolumeSnapshot{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "acme-in-progress",
			Namespace:         "ns",
			Labels:            map[string]string{"cluster": "acme"},
			CreationTimestamp: metav1.NewTime(time.Now()),
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(existing).Build()
	b := &snapshot.Bootstrapper{Client: c, Owner: "test"}

	got, err := b.ReadyForScaleUp(context.Background(), newDatabase(true))
	require.NoError(t, err)
	require.False(t, got)

	var list storagesnapshotv1.VolumeSnapshotList
	require.NoError(t, c.List(context.Background(), &list, client.InNamespace("ns")))
	require.Len(t, list.Items, 1, "no new snapshot should be created while one is active")
}
