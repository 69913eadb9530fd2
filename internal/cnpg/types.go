// Package cnpg carries the trimmed-down shape of the underlying
// CloudNativePG Cluster custom resource this engine composes (spec.md
// glossary: "underlying Postgres operator"). Only the fields the
// projector (C6) needs to set are modeled; the real CRD carries many
// more, all left to the underlying operator's own defaulting.
package cnpg

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GroupVersion matches the CloudNativePG CRD group this engine targets.
const (
	Group   = "postgresql.cnpg.io"
	Version = "v1"
	Kind    = "Cluster"
)

// Cluster is the engine's view of the object it server-side-applies.
type Cluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              ClusterSpec `json:"spec"`
}

// ClusterSpec is the subset of CloudNativePG's ClusterSpec the
// projector populates.
type ClusterSpec struct {
	Instances int32 `json:"instances"`

	ImageName string `json:"imageName,omitempty"`

	PostgresConfiguration PostgresConfiguration `json:"postgresql"`

	StorageConfiguration StorageConfiguration `json:"storage"`

	Backup *BackupConfiguration `json:"backup,omitempty"`

	Bootstrap *BootstrapConfiguration `json:"bootstrap,omitempty"`
}

// PostgresConfiguration carries the rendered parameter set.
// SharedPreloadLibraries is nil to request CloudNativePG's own default
// handling on a brand-new cluster (spec.md §4.6).
type PostgresConfiguration struct {
	Parameters              map[string]string `json:"parameters"`
	SharedPreloadLibraries  []string          `json:"shared_preload_libraries,omitempty"`
}

// StorageConfiguration mirrors the Instance's requested volume size.
type StorageConfiguration struct {
	Size resource.Quantity `json:"size"`
}

// BackupConfiguration is populated only when every precondition in
// spec.md §4.6 is met.
type BackupConfiguration struct {
	Destination           string                `json:"destinationPath"`
	RetentionPolicyDays   int                   `json:"retentionPolicy"`
	ServiceAccountRoleARN string                `json:"-"`
	VolumeSnapshot        *VolumeSnapshotBackup `json:"volumeSnapshot,omitempty"`
}

// VolumeSnapshotBackup turns on CSI snapshot-based backups.
type VolumeSnapshotBackup struct {
	Enabled bool `json:"enabled"`
}

// BootstrapConfiguration drives recovery from a restore source.
type BootstrapConfiguration struct {
	Recovery *RecoveryBootstrap `json:"recovery,omitempty"`
}

// RecoveryBootstrap names the restore VolumeSnapshot pair and an
// optional point-in-time target.
type RecoveryBootstrap struct {
	VolumeSnapshots    *VolumeSnapshotSource `json:"volumeSnapshots,omitempty"`
	RecoveryTargetTime string                `json:"recoveryTargetTime,omitempty"`
}

// VolumeSnapshotSource names the bound restore VolumeSnapshot.
type VolumeSnapshotSource struct {
	Storage corev1.TypedLocalObjectReference `json:"storage"`
}
