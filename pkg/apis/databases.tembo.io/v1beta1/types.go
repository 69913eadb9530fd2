package v1beta1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=db

// Database is the Schema for the databases API. It describes the desired
// state of a single managed Postgres instance.
type Database struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DatabaseSpec   `json:"spec,omitempty"`
	Status DatabaseStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DatabaseList contains a list of Database.
type DatabaseList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Database `json:"items"`
}

// DatabaseSpec mirrors the Instance (I) attributes of the data model.
type DatabaseSpec struct {
	// Replicas is 1 or 2 in the covered core.
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Maximum=2
	Replicas int32 `json:"replicas"`

	// Storage is the size of the primary volume.
	Storage resource.Quantity `json:"storage"`

	// Image is the Postgres container image.
	Image string `json:"image,omitempty"`

	// Port is the Postgres listener port.
	Port int32 `json:"port,omitempty"`

	Extensions     []Extension    `json:"extensions,omitempty"`
	TrunkInstalls  []TrunkInstall `json:"trunkInstalls,omitempty"`
	RuntimeConfig  []Parameter    `json:"runtimeConfig,omitempty"`
	OverrideConfig []Parameter    `json:"overrideConfig,omitempty"`

	Stack *StackSpec `json:"stack,omitempty"`

	Backup  *BackupSpec  `json:"backup,omitempty"`
	Restore *RestoreSpec `json:"restore,omitempty"`

	AppServices []AppService `json:"appServices,omitempty"`

	ExtraDomains []string `json:"extraDomains,omitempty"`
	IPAllowList  []string `json:"ipAllowList,omitempty"`

	// Stop makes the reconciler skip every phase and report
	// Status.Running=false; the underlying cluster is left as it is.
	Stop bool `json:"stop,omitempty"`
}

// StackSpec names an optional template plus stack-level overrides.
type StackSpec struct {
	Name       string      `json:"name,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// BackupSpec configures where and how often the instance is backed up.
type BackupSpec struct {
	Destination     string `json:"destination,omitempty"`
	RetentionPolicy string `json:"retentionPolicy,omitempty"`
	Schedule        string `json:"schedule,omitempty"`
	VolumeSnapshot  bool   `json:"volumeSnapshot,omitempty"`

	// ServiceAccountRoleARN must be non-empty, together with
	// Destination, for the underlying cluster's backup block to be
	// projected. Its value is not written into the projected cluster
	// object or onto any service account annotation.
	ServiceAccountRoleARN string `json:"serviceAccountRoleARN,omitempty"`
}

// RestoreSpec, when set, makes this instance a clone of SourceInstance.
type RestoreSpec struct {
	SourceInstance     string       `json:"sourceInstance"`
	RecoveryTargetTime *metav1.Time `json:"recoveryTargetTime,omitempty"`
}

// Parameter is a single Postgres configuration setting. Its Value is
// resolved to either a single string or an ordered set of strings by
// internal/params.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Extension is a single extension the user wants present in the instance.
type Extension struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Locations   []ExtensionLocation  `json:"locations,omitempty"`
}

// ExtensionLocation is a (database, schema) install target.
type ExtensionLocation struct {
	Enabled  bool    `json:"enabled"`
	Database string  `json:"database"`
	Schema   string  `json:"schema,omitempty"`
	Version  *string `json:"version,omitempty"`
}

// TrunkInstall requests that a binary package be installed on disk
// independent of whether any location currently enables it.
type TrunkInstall struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// AppServiceSource is a tagged union: either a reference into an
// external catalog, or a fully inline custom spec. Exactly one of
// Catalog/Custom is set.
type AppServiceSource struct {
	Catalog *string           `json:"catalog,omitempty"`
	Custom  *AppServiceCustom `json:"custom,omitempty"`
}

// AppServiceCustom is an inline sidecar application specification.
type AppServiceCustom struct {
	Image   string              `json:"image"`
	Command []string            `json:"command,omitempty"`
	Env     []corev1.EnvVar     `json:"env,omitempty"`
	Routing *AppServiceRouting  `json:"routing,omitempty"`
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`
}

// AppServiceRouting configures the optional Service fronting an app
// service. Only Port is used: it sets the container port and the
// Service port. No route is created for an app service; Entrypoints
// and Ingress are not read.
type AppServiceRouting struct {
	Port        int32    `json:"port"`
	Entrypoints []string `json:"entrypoints,omitempty"`
	Ingress     bool     `json:"ingress,omitempty"`
}

// AppService is one sidecar application entry.
type AppService struct {
	Name   string           `json:"name"`
	Source AppServiceSource `json:"source"`
}
