// Package v1alpha1 contains the subset of the Traefik CRD API this
// engine consumes: IngressRouteTCP and MiddlewareTCP. It is grounded
// on traefik/traefik's own CRD types but trimmed to the fields C8
// actually reads or writes.
// +kubebuilder:object:generate=true
// +groupName=traefik.io
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	GroupVersion = schema.GroupVersion{Group: "traefik.io", Version: "v1alpha1"}

	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	AddToScheme = SchemeBuilder.AddToScheme
)

func init() {
	SchemeBuilder.Register(&IngressRouteTCP{}, &IngressRouteTCPList{})
	SchemeBuilder.Register(&MiddlewareTCP{}, &MiddlewareTCPList{})
}
