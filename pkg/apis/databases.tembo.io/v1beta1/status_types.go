package v1beta1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

// DatabaseStatus mirrors ExtensionStatus (ES) plus the top-level fields
// named in spec.md §4.10.
type DatabaseStatus struct {
	// Running is false while Spec.Stop is true and after a reconcile
	// whose phase chain returned an error; otherwise true.
	Running bool `json:"running"`

	// ExtensionsUpdating is true while the extension reconcile loop
	// (C3+C4) has not yet converged this generation.
	ExtensionsUpdating bool `json:"extensionsUpdating"`

	Extensions []ExtensionStatus `json:"extensions,omitempty"`

	Storage   string `json:"storage,omitempty"`
	Resources string `json:"resources,omitempty"`

	RuntimeConfig []Parameter `json:"runtimeConfig,omitempty"`

	FirstRecoverabilityTime *metav1.Time `json:"firstRecoverabilityTime,omitempty"`
	PGPostmasterStartTime   *metav1.Time `json:"pgPostmasterStartTime,omitempty"`
	LastFullyReconciledAt   *metav1.Time `json:"lastFullyReconciledAt,omitempty"`

	// Conditions follow the standard Kubernetes convention.
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// ExtensionStatus is the observed state of one extension across all its
// locations.
type ExtensionStatus struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Locations   []ExtensionLocationStatus `json:"locations,omitempty"`
}

// ExtensionLocationStatus is the observed state of one extension at one
// (database, schema) location, including error memory.
type ExtensionLocationStatus struct {
	Database     string  `json:"database"`
	Schema       string  `json:"schema,omitempty"`
	Version      *string `json:"version,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	Error        bool    `json:"error,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}
