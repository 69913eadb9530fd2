package v1alpha1

import (
	"k8s.io/apimachinery/pkg/util/intstr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true

// IngressRouteTCP is the Traefik CRD describing a TCP route. Only the
// fields C8 reads or writes are modeled.
type IngressRouteTCP struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec IngressRouteTCPSpec `json:"spec"`
}

// +kubebuilder:object:root=true

type IngressRouteTCPList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []IngressRouteTCP `json:"items"`
}

type IngressRouteTCPSpec struct {
	EntryPoints []string                `json:"entryPoints,omitempty"`
	Routes      []IngressRouteTCPRoute  `json:"routes"`
	TLS         *IngressRouteTCPTLS     `json:"tls,omitempty"`
}

type IngressRouteTCPRoute struct {
	Match       string                           `json:"match"`
	Services    []IngressRouteTCPService         `json:"services,omitempty"`
	Middlewares []IngressRouteTCPMiddlewareRef   `json:"middlewares,omitempty"`
	Priority    int                              `json:"priority,omitempty"`
}

type IngressRouteTCPService struct {
	Name   string             `json:"name"`
	Port   intstr.IntOrString `json:"port"`
	Weight *int               `json:"weight,omitempty"`
}

// IngressRouteTCPMiddlewareRef's Namespace field names a Traefik
// provider namespace, not a Kubernetes namespace; it is left unset so
// Traefik resolves the middleware in the IngressRouteTCP's own
// Kubernetes namespace.
type IngressRouteTCPMiddlewareRef struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

type IngressRouteTCPTLS struct {
	Passthrough bool `json:"passthrough,omitempty"`
}

// +kubebuilder:object:root=true

// MiddlewareTCP carries the IP allow-list middleware this engine
// attaches to every route it owns.
type MiddlewareTCP struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec MiddlewareTCPSpec `json:"spec"`
}

// +kubebuilder:object:root=true

type MiddlewareTCPList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MiddlewareTCP `json:"items"`
}

type MiddlewareTCPSpec struct {
	IPAllowList *MiddlewareTCPIPAllowList `json:"ipAllowList,omitempty"`
}

type MiddlewareTCPIPAllowList struct {
	SourceRange []string `json:"sourceRange,omitempty"`
}
