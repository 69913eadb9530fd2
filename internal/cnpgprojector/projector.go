// Package cnpgprojector implements C6: it composes the underlying
// CloudNativePG-shaped Cluster spec from the assembled parameters,
// instance replica count, and backup configuration, applying the
// shared_preload_libraries safety rule and the scale-up gate to C7.
package cnpgprojector

import (
	"context"
	"strconv"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/cnpg"
	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/params"
	"github.com/tembo-io/pgdataplane-operator/internal/requeue"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// DefaultRetentionDays is used whenever the retention policy fails to
// parse as an integer (spec.md §4.6).
const DefaultRetentionDays = 30

// Projector builds and applies the underlying cluster object.
type Projector struct {
	Client client.Client
	Owner  client.FieldOwner
}

// SnapshotGate reports whether C7 has bound a ready restore/bootstrap
// snapshot yet, gating the 1->2 scale-up (spec.md §4.6/§4.7).
type SnapshotGate interface {
	ReadyForScaleUp(ctx context.Context, db *dbv1beta1.Database) (bool, error)
}

// Project renders and server-side-applies the underlying cluster
// object. It returns a requeue Action alongside any error; the action
// is meaningful even when err is nil (e.g. waiting on the snapshot
// gate).
func (p *Projector) Project(
	ctx context.Context,
	db *dbv1beta1.Database,
	assembled []params.NamedValue,
	available map[string]bool,
	gate SnapshotGate,
) (requeue.Action, error) {
	name := naming.UnderlyingCluster(db)

	existing := &cnpg.Cluster{}
	err := p.Client.Get(ctx, client.ObjectKey{Namespace: db.Namespace, Name: name}, existing)
	isNew := apierrors.IsNotFound(err)
	if err != nil && !isNew {
		return requeue.Action{}, errors.Wrap(err, "getting underlying cluster")
	}

	spec := cnpg.ClusterSpec{
		ImageName:             db.Spec.Image,
		StorageConfiguration:  cnpg.StorageConfiguration{Size: db.Spec.Storage},
		PostgresConfiguration: projectParameters(assembled, available, isNew),
	}

	desiredInstances := db.Spec.Replicas
	if desiredInstances < 1 {
		desiredInstances = 1
	}

	var action requeue.Action
	if !isNew && existing.Spec.Instances == 1 && desiredInstances == 2 {
		ready, gateErr := gate.ReadyForScaleUp(ctx, db)
		if gateErr != nil {
			return requeue.Action{}, gateErr
		}
		if !ready {
			// C6 yields to C7: keep instances at 1 this cycle.
			spec.Instances = 1
			action = requeue.After(requeue.SnapshotPoll)
		} else {
			spec.Instances = desiredInstances
		}
	} else {
		spec.Instances = desiredInstances
	}

	spec.Backup = projectBackup(db)
	spec.Bootstrap = projectBootstrap(db)

	cluster := &cnpg.Cluster{}
	cluster.Namespace = db.Namespace
	cluster.Name = name
	cluster.APIVersion = cnpg.Group + "/" + cnpg.Version
	cluster.Kind = cnpg.Kind
	cluster.Spec = spec

	if err := p.Client.Patch(ctx, cluster, client.Apply, client.ForceOwnership, p.Owner); err != nil {
		return requeue.Action{}, errors.Wrap(err, "applying underlying cluster")
	}

	return action, nil
}

// projectParameters renders the assembled NamedValue list into the
// underlying cluster's parameter map, applying the
// shared_preload_libraries availability filter.
func projectParameters(assembled []params.NamedValue, available map[string]bool, isNew bool) cnpg.PostgresConfiguration {
	out := cnpg.PostgresConfiguration{Parameters: make(map[string]string, len(assembled))}

	for _, nv := range assembled {
		if nv.Name == "shared_preload_libraries" {
			continue // handled below with the availability filter
		}
		out.Parameters[nv.Name] = nv.Value.RenderRaw()
	}

	if isNew {
		// Brand-new cluster: let CloudNativePG bootstrap with its own
		// default shared_preload_libraries (spec.md §4.6).
		out.SharedPreloadLibraries = nil
		return out
	}

	var requested []string
	for _, nv := range assembled {
		if nv.Name == "shared_preload_libraries" {
			requested = params.SortedNames(nv.Value.Names())
		}
	}
	out.SharedPreloadLibraries = filterAvailable(requested, available)
	return out
}

func filterAvailable(names []string, available map[string]bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if available[n] {
			out = append(out, n)
		}
	}
	return out
}

// projectBackup populates the backup block only when every
// precondition holds (spec.md §4.6): backups enabled implicitly by a
// non-empty destination, plus a service-account role annotation.
func projectBackup(db *dbv1beta1.Database) *cnpg.BackupConfiguration {
	if db.Spec.Backup == nil {
		return nil
	}
	b := db.Spec.Backup
	if b.Destination == "" || b.ServiceAccountRoleARN == "" {
		return nil
	}

	retention := DefaultRetentionDays
	if b.RetentionPolicy != "" {
		if parsed, err := strconv.Atoi(b.RetentionPolicy); err == nil {
			retention = parsed
		}
	}

	out := &cnpg.BackupConfiguration{
		Destination:           b.Destination,
		RetentionPolicyDays:   retention,
		ServiceAccountRoleARN: b.ServiceAccountRoleARN,
	}
	if b.VolumeSnapshot {
		out.VolumeSnapshot = &cnpg.VolumeSnapshotBackup{Enabled: true}
	}
	return out
}

func projectBootstrap(db *dbv1beta1.Database) *cnpg.BootstrapConfiguration {
	if db.Spec.Restore == nil {
		return nil
	}
	group := storagesnapshotv1.SchemeGroupVersion.Group
	rb := &cnpg.RecoveryBootstrap{
		VolumeSnapshots: &cnpg.VolumeSnapshotSource{
			Storage: corev1.TypedLocalObjectReference{
				APIGroup: &group,
				Kind:     "VolumeSnapshot",
				Name:     naming.RestoreVolumeSnapshot(db),
			},
		},
	}
	if db.Spec.Restore.RecoveryTargetTime != nil {
		rb.RecoveryTargetTime = db.Spec.Restore.RecoveryTargetTime.Format("2006-01-02 15:04:05")
	}
	return &cnpg.BootstrapConfiguration{Recovery: rb}
}
