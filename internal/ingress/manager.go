// Package ingress implements C8: adoption and reconciliation of
// Traefik IngressRouteTCP/MiddlewareTCP objects fronting an instance's
// read-write Postgres endpoint, grounded on
// tembo-operator/src/ingress.rs.
package ingress

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	traefikv1alpha1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/traefik/v1alpha1"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// ValidIPv4CIDR is the strict IPv4/CIDR regex named in spec.md §4.8.
var ValidIPv4CIDR = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)(/(3[0-2]|2[0-9]|1[0-9]|[0-9]))?$`)

const entryPoint = "postgresql"

// AppServiceLabelComponent mirrors naming.ComponentAppService; routes
// carrying this label value belong to C9, not C8, and are never
// touched here.
const AppServiceLabelComponent = naming.ComponentAppService

// Manager reconciles the Postgres TCP route set and its IP allow-list
// middleware for one instance.
type Manager struct {
	Client client.Client
	Owner  client.FieldOwner
}

// Reconcile runs the full route-adoption algorithm from spec.md §4.8:
// patch stale service/port on existing routes while keeping their
// matcher, create a new route if the expected matcher is missing,
// keep every route's middleware list in sync, and maintain the extra
// domains route and the IP allow-list middleware.
func (m *Manager) Reconcile(ctx context.Context, db *dbv1beta1.Database, baseDomain, serviceName string, port int32) error {
	if baseDomain == "" {
		// spec.md §6: ingress reconciliation is skipped entirely when
		// DATA_PLANE_BASEDOMAIN is unset.
		return nil
	}

	middlewareName, err := m.reconcileIPAllowList(ctx, db)
	if err != nil {
		return err
	}

	if err := m.reconcilePrimaryRoute(ctx, db, baseDomain, serviceName, port, []string{middlewareName}); err != nil {
		return err
	}

	return m.reconcileExtraDomains(ctx, db, baseDomain, serviceName, port, []string{middlewareName})
}

func (m *Manager) reconcilePrimaryRoute(ctx context.Context, db *dbv1beta1.Database, baseDomain, serviceName string, port int32, middlewares []string) error {
	var list traefikv1alpha1.IngressRouteTCPList
	if err := m.Client.List(ctx, &list, client.InNamespace(db.Namespace)); err != nil {
		return errors.Wrap(err, "listing ingress route tcps")
	}

	prefix := naming.IngressRoutePrefix(db)
	adoptable := naming.AdoptableRouteName(db)

	var presentNames []string
	var presentMatchers []string
	var patchedNames []string

	for i := range list.Items {
		route := &list.Items[i]
		if route.Labels["component"] == AppServiceLabelComponent {
			continue
		}
		name := route.Name
		if name != adoptable && !hasPrefix(name, prefix) {
			continue
		}
		if len(route.Spec.Routes) == 0 || len(route.Spec.Routes[0].Services) == 0 {
			continue
		}

		svc := route.Spec.Routes[0].Services[0]

		presentNames = append(presentNames, name)
		presentMatchers = append(presentMatchers, route.Spec.Routes[0].Match)

		if svc.Name != serviceName || svc.Port != intstr.FromInt(int(port)) {
			patched := buildRoute(name, db.Namespace, route.Spec.Routes[0].Match, serviceName, port, middlewares)
			if err := m.apply(ctx, patched); err != nil {
				return err
			}
			patchedNames = append(patchedNames, name)
		}
	}

	expectedMatcher := fmt.Sprintf("HostSNI(`%s.%s`)", db.Name, baseDomain)
	if !contains(presentMatchers, expectedMatcher) {
		index := 0
		name := fmt.Sprintf("%s%d", prefix, index)
		for contains(presentNames, name) {
			index++
			name = fmt.Sprintf("%s%d", prefix, index)
		}
		route := buildRoute(name, db.Namespace, expectedMatcher, serviceName, port, middlewares)
		if err := m.apply(ctx, route); err != nil {
			return err
		}
		presentNames = append(presentNames, name)
	}

	// Ensure every still-present route carries the desired middleware
	// list. Routes re-applied above already carry it, so they are
	// skipped here rather than re-applied from their stale listed copy.
	for i := range list.Items {
		route := &list.Items[i]
		if route.Labels["component"] == AppServiceLabelComponent {
			continue
		}
		if !contains(presentNames, route.Name) || contains(patchedNames, route.Name) {
			continue
		}
		if len(route.Spec.Routes) == 0 {
			continue
		}
		if !middlewaresEqual(route.Spec.Routes[0].Middlewares, middlewares) {
			patched := route.DeepCopy()
			for j := range patched.Spec.Routes {
				patched.Spec.Routes[j].Middlewares = middlewareRefs(middlewares)
			}
			if err := m.apply(ctx, patched); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Manager) reconcileExtraDomains(ctx context.Context, db *dbv1beta1.Database, baseDomain, serviceName string, port int32, middlewares []string) error {
	name := naming.ExtraDomainsRoute(db)
	domains := append([]string(nil), db.Spec.ExtraDomains...)
	sort.Strings(domains)

	if len(domains) == 0 {
		existing := &traefikv1alpha1.IngressRouteTCP{}
		err := m.Client.Get(ctx, client.ObjectKey{Namespace: db.Namespace, Name: name}, existing)
		if apierrors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "getting extra domains route")
		}
		if err := m.Client.Delete(ctx, existing); err != nil && !apierrors.IsNotFound(err) {
			return errors.Wrap(err, "deleting extra domains route")
		}
		return nil
	}

	matchers := make([]string, len(domains))
	for i, d := range domains {
		matchers[i] = fmt.Sprintf("HostSNI(`%s`)", d)
	}
	matcher := joinOr(matchers)

	route := buildRoute(name, db.Namespace, matcher, serviceName, port, middlewares)
	return m.apply(ctx, route)
}

func (m *Manager) reconcileIPAllowList(ctx context.Context, db *dbv1beta1.Database) (string, error) {
	valid := ValidCIDRs(db.Spec.IPAllowList)
	mw := &traefikv1alpha1.MiddlewareTCP{
		TypeMeta: metav1.TypeMeta{APIVersion: traefikv1alpha1.GroupVersion.String(), Kind: "MiddlewareTCP"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      db.Name,
			Namespace: db.Namespace,
		},
		Spec: traefikv1alpha1.MiddlewareTCPSpec{
			IPAllowList: &traefikv1alpha1.MiddlewareTCPIPAllowList{SourceRange: valid},
		},
	}
	if err := m.Client.Patch(ctx, mw, client.Apply, client.ForceOwnership, m.Owner); err != nil {
		return "", errors.Wrap(err, "applying ip allow-list middleware")
	}
	return mw.Name, nil
}

// ValidCIDRs filters source ranges against ValidIPv4CIDR, sorts and
// dedupes them, and falls back to allow-all when nothing validates.
func ValidCIDRs(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, ip := range in {
		if !ValidIPv4CIDR.MatchString(ip) {
			continue
		}
		if seen[ip] {
			continue
		}
		seen[ip] = true
		out = append(out, ip)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return []string{"0.0.0.0/0"}
	}
	return out
}

func buildRoute(name, namespace, matcher, serviceName string, port int32, middlewares []string) *traefikv1alpha1.IngressRouteTCP {
	return &traefikv1alpha1.IngressRouteTCP{
		TypeMeta: metav1.TypeMeta{APIVersion: traefikv1alpha1.GroupVersion.String(), Kind: "IngressRouteTCP"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: traefikv1alpha1.IngressRouteTCPSpec{
			EntryPoints: []string{entryPoint},
			Routes: []traefikv1alpha1.IngressRouteTCPRoute{
				{
					Match: matcher,
					Services: []traefikv1alpha1.IngressRouteTCPService{
						{Name: serviceName, Port: intstr.FromInt(int(port))},
					},
					Middlewares: middlewareRefs(middlewares),
				},
			},
			TLS: &traefikv1alpha1.IngressRouteTCPTLS{Passthrough: true},
		},
	}
}

func (m *Manager) apply(ctx context.Context, route *traefikv1alpha1.IngressRouteTCP) error {
	if err := m.Client.Patch(ctx, route, client.Apply, client.ForceOwnership, m.Owner); err != nil {
		return errors.Wrapf(err, "applying ingress route tcp %s", route.Name)
	}
	return nil
}

func middlewareRefs(names []string) []traefikv1alpha1.IngressRouteTCPMiddlewareRef {
	out := make([]traefikv1alpha1.IngressRouteTCPMiddlewareRef, len(names))
	for i, n := range names {
		out[i] = traefikv1alpha1.IngressRouteTCPMiddlewareRef{Name: n}
	}
	return out
}

func middlewaresEqual(existing []traefikv1alpha1.IngressRouteTCPMiddlewareRef, desired []string) bool {
	if len(existing) != len(desired) {
		return false
	}
	for i, d := range desired {
		if existing[i].Name != d {
			return false
		}
	}
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinOr(matchers []string) string {
	out := ""
	for i, m := range matchers {
		if i > 0 {
			out += " || "
		}
		out += m
	}
	return out
}
