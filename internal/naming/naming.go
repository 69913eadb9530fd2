// Package naming centralizes the derivation of every Kubernetes object
// name produced from an Instance name, the way the teacher's naming
// package does for PostgresCluster.
package naming

import (
	"fmt"
	"time"

	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// ConnectionSecret is the secret carrying username/password/host/uris.
func ConnectionSecret(db *dbv1beta1.Database) string {
	return db.Name + "-connection"
}

// MetricsSecret is the optional monitoring role secret.
func MetricsSecret(db *dbv1beta1.Database) string {
	return db.Name + "-metrics"
}

// UnderlyingCluster is the name of the projected CloudNativePG-shaped
// cluster object (C6).
func UnderlyingCluster(db *dbv1beta1.Database) string {
	return db.Name
}

// PrimaryPodLabelSelector returns the label set identifying the
// instance's primary pod.
func PrimaryPodLabelSelector(db *dbv1beta1.Database) map[string]string {
	return map[string]string{
		"cluster": db.Name,
		"role":    "primary",
	}
}

// RestoreVolumeSnapshot is the derived VS name for a restore pair.
func RestoreVolumeSnapshot(db *dbv1beta1.Database) string {
	return db.Name + "-restore-vs"
}

// RestoreVolumeSnapshotContent is the derived VSC name for a restore
// pair.
func RestoreVolumeSnapshotContent(db *dbv1beta1.Database) string {
	return db.Name + "-restore-vsc"
}

// MaxSnapshotNameLength is the invariant bound from spec.md §8.
const MaxSnapshotNameLength = 54

// BootstrapSnapshot returns the name for a freshly created scale-up
// snapshot, truncated to MaxSnapshotNameLength.
func BootstrapSnapshot(db *dbv1beta1.Database, now time.Time) string {
	name := fmt.Sprintf("%s-%s", db.Name, now.UTC().Format("200601021504"))
	if len(name) > MaxSnapshotNameLength {
		name = name[:MaxSnapshotNameLength]
	}
	return name
}

// IngressRoutePrefix is the prefix used for engine-owned route names,
// e.g. "<name>-rw-".
func IngressRoutePrefix(db *dbv1beta1.Database) string {
	return db.Name + "-rw-"
}

// AdoptableRouteName is the single route name considered directly
// adoptable (equal to the instance name, per spec.md §6).
func AdoptableRouteName(db *dbv1beta1.Database) string {
	return db.Name
}

// ExtraDomainsRoute is the name of the route carrying user-provided
// extra domains.
func ExtraDomainsRoute(db *dbv1beta1.Database) string {
	return "extra-" + db.Name + "-rw"
}

// AppServiceDeployment and AppServiceService name a sidecar's objects.
func AppServiceDeployment(db *dbv1beta1.Database, appName string) string {
	return db.Name + "-" + appName
}

func AppServiceService(db *dbv1beta1.Database, appName string) string {
	return db.Name + "-" + appName
}

const (
	// ComponentAppService is the label value applied to every object
	// owned by C9, used to compute the deletion set.
	ComponentAppService = "app-service"
	LabelCluster        = "cluster"
	LabelComponent      = "component"
)

// Finalizer guards cleanup of engine-owned objects that are not
// expressed as Kubernetes owner references (e.g. the derived snapshot
// pair, which must outlive the Database under deletionPolicy=Retain).
const Finalizer = "databases.tembo.io/finalizer"

// PauseAnnotation, when present and parseable as a true bool, suspends
// reconciliation; reconciliation proceeds if it's absent or malformed.
const PauseAnnotation = "databases.tembo.io/pause"

// RestartedAtAnnotation holds the time of the last requested restart
// on the primary pod. The startup-race check in spec.md §5 reads it;
// this engine never sets it.
const RestartedAtAnnotation = "databases.tembo.io/restarted-at"
