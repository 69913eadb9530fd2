// Package paramreconciler implements C5: it assembles the final
// parameter set (C1), writes it into a namespaced config object, and
// returns the same assembled list, which the caller hands to the
// underlying-cluster projector (C6); C6 does not read the config
// object itself. It also answers library-availability
// questions for C6 by listing the package library directory through
// the SQL gateway's exec channel.
package paramreconciler

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/params"
	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// PkgLibDir is the directory searched for shared library binaries.
const PkgLibDir = "/usr/lib/postgresql/lib"

// ConfigMapKey is the key under which the rendered Postgres snippet is
// stored in the config object.
const ConfigMapKey = "tembo.postgresql.conf"

// Reconciler assembles and persists the instance's parameter set.
type Reconciler struct {
	Client client.Client
	Owner  client.FieldOwner
	Gw     *sqlgateway.Gateway
}

// ConfigMapName is the namespaced config object name Reconcile writes.
func ConfigMapName(db *dbv1beta1.Database) string {
	return db.Name + "-pg-config"
}

// Reconcile assembles the parameter set, server-side applies it as a
// rendered ConfigMap, and returns the assembled list.
func (r *Reconciler) Reconcile(ctx context.Context, db *dbv1beta1.Database, required params.RequiredLoadTable, catalog params.StackCatalog) ([]params.NamedValue, error) {
	assembled, err := params.Assemble(db, required, catalog)
	if err != nil {
		return nil, errors.Wrap(err, "assembling parameters")
	}

	var b strings.Builder
	for _, nv := range assembled {
		b.WriteString(params.Render(nv.Name, nv.Value))
		b.WriteString("\n")
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName(db),
			Namespace: db.Namespace,
		},
		Data: map[string]string{ConfigMapKey: b.String()},
	}
	cm.SetGroupVersionKind(corev1.SchemeGroupVersion.WithKind("ConfigMap"))

	if err := r.Client.Patch(ctx, cm, client.Apply, client.ForceOwnership, r.Owner); err != nil {
		return nil, errors.Wrap(err, "applying parameter configmap")
	}
	return assembled, nil
}

// AvailableLibraries lists the libraries actually present on disk in
// the primary pod's PkgLibDir, keyed by library name (without the .so
// suffix).
func (r *Reconciler) AvailableLibraries(ctx context.Context, namespace, instance string) (map[string]bool, error) {
	pod, err := sqlgateway.FindPrimaryPod(ctx, r.Gw.Clientset, namespace, instance)
	if err != nil {
		return nil, err
	}
	res, err := r.Gw.Execer.Exec(ctx, namespace, pod.Name, sqlgateway.PrimaryContainerName,
		[]string{"ls", "-1", PkgLibDir})
	if err != nil {
		return nil, errors.Wrap(err, "listing pkglibdir")
	}

	out := map[string]bool{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, ".so") {
			out[strings.TrimSuffix(line, ".so")] = true
		}
	}
	return out, nil
}

// IsLibraryAvailable is a convenience check against the available set.
func IsLibraryAvailable(available map[string]bool, name string) bool {
	return available[name]
}

// FilterAvailable returns the subset of names present in available,
// sorted alphabetically. C6 does not call it: cnpgprojector filters
// shared_preload_libraries with its own order-preserving filter.
func FilterAvailable(names []string, available map[string]bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if available[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
