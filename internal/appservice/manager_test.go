package appservice

import (
	"context"
	"testing"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func testDB() *dbv1beta1.Database {
	return &dbv1beta1.Database{ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"}}
}

func TestConnectionEnvVars_NamingAndKeys(t *testing.T) {
	db := testDB()
	vars := connectionEnvVars(db)
	if len(vars) != 3 {
		t.Fatalf("expected 3 env vars, got %d", len(vars))
	}

	want := map[string]string{
		"ACME_R_CONNECTION":  "r_uri",
		"ACME_RO_CONNECTION": "ro_uri",
		"ACME_RW_CONNECTION": "rw_uri",
	}
	for _, v := range vars {
		key, ok := want[v.Name]
		if !ok {
			t.Fatalf("unexpected env var name %s", v.Name)
		}
		if v.ValueFrom == nil || v.ValueFrom.SecretKeyRef == nil {
			t.Fatalf("expected %s to source from a secret key ref", v.Name)
		}
		if v.ValueFrom.SecretKeyRef.Key != key {
			t.Fatalf("expected %s to reference key %s, got %s", v.Name, key, v.ValueFrom.SecretKeyRef.Key)
		}
		if v.ValueFrom.SecretKeyRef.Name != naming.ConnectionSecret(db) {
			t.Fatalf("expected %s to reference secret %s, got %s", v.Name, naming.ConnectionSecret(db), v.ValueFrom.SecretKeyRef.Name)
		}
	}
}

func TestBuildDeployment_RestrictedSecurityContext(t *testing.T) {
	db := testDB()
	svc := dbv1beta1.AppService{
		Name: "worker",
		Source: dbv1beta1.AppServiceSource{
			Custom: &dbv1beta1.AppServiceCustom{Image: "acme/worker:latest"},
		},
	}
	name := naming.AppServiceDeployment(db, svc.Name)
	deployment := buildDeployment(db, svc, name)

	if len(deployment.Spec.Template.Spec.Containers) != 1 {
		t.Fatalf("expected exactly one container")
	}
	sc := deployment.Spec.Template.Spec.Containers[0].SecurityContext
	if sc == nil {
		t.Fatalf("expected a security context")
	}
	if sc.RunAsNonRoot == nil || !*sc.RunAsNonRoot {
		t.Fatalf("expected RunAsNonRoot true")
	}
	if sc.AllowPrivilegeEscalation == nil || *sc.AllowPrivilegeEscalation {
		t.Fatalf("expected AllowPrivilegeEscalation false")
	}
	if sc.ReadOnlyRootFilesystem == nil || !*sc.ReadOnlyRootFilesystem {
		t.Fatalf("expected ReadOnlyRootFilesystem true")
	}
	if len(sc.Capabilities.Drop) != 1 || sc.Capabilities.Drop[0] != "ALL" {
		t.Fatalf("expected capabilities dropped to ALL, got %v", sc.Capabilities.Drop)
	}

	// no routing configured: no container ports, env still carries the
	// three connection vars appended after any user-supplied ones.
	if len(deployment.Spec.Template.Spec.Containers[0].Ports) != 0 {
		t.Fatalf("expected no container ports without routing")
	}
	if len(deployment.Spec.Template.Spec.Containers[0].Env) != 3 {
		t.Fatalf("expected 3 env vars (connection vars only), got %d", len(deployment.Spec.Template.Spec.Containers[0].Env))
	}
}

func TestBuildDeployment_RoutingAddsContainerPort(t *testing.T) {
	db := testDB()
	svc := dbv1beta1.AppService{
		Name: "web",
		Source: dbv1beta1.AppServiceSource{
			Custom: &dbv1beta1.AppServiceCustom{
				Image:   "acme/web:latest",
				Routing: &dbv1beta1.AppServiceRouting{Port: 8080},
			},
		},
	}
	name := naming.AppServiceDeployment(db, svc.Name)
	deployment := buildDeployment(db, svc, name)

	ports := deployment.Spec.Template.Spec.Containers[0].Ports
	if len(ports) != 1 || ports[0].ContainerPort != 8080 {
		t.Fatalf("expected a single container port 8080, got %v", ports)
	}

	service := buildService(db, svc, name)
	if len(service.Spec.Ports) != 1 || service.Spec.Ports[0].Port != 8080 {
		t.Fatalf("expected service port 8080, got %v", service.Spec.Ports)
	}
}

func TestReconcile_SkipsCatalogSources(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := dbv1beta1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := appsv1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	m := &Manager{Client: c, Owner: "test"}

	catalogName := "catalog-ref"
	db := testDB()
	db.Spec.AppServices = []dbv1beta1.AppService{
		{Name: "from-catalog", Source: dbv1beta1.AppServiceSource{Catalog: &catalogName}},
	}

	if err := m.Reconcile(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var deployments appsv1.DeploymentList
	if err := c.List(context.Background(), &deployments, client.InNamespace("ns")); err != nil {
		t.Fatal(err)
	}
	if len(deployments.Items) != 0 {
		t.Fatalf("expected no deployments for a catalog-referenced app service, got %d", len(deployments.Items))
	}
}

func TestReap_DeletesUndesiredObjects(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := appsv1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}

	stale := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "acme-worker-old",
			Namespace: "ns",
			Labels: map[string]string{
				naming.LabelComponent: naming.ComponentAppService,
				naming.LabelCluster:   "acme",
			},
		},
	}
	kept := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "acme-worker-new",
			Namespace: "ns",
			Labels: map[string]string{
				naming.LabelComponent: naming.ComponentAppService,
				naming.LabelCluster:   "acme",
			},
		},
	}

	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(stale, kept).Build()
	m := &Manager{Client: c, Owner: "test"}

	db := testDB()
	if err := m.reap(context.Background(), db, map[string]bool{"acme-worker-new": true}); err != nil {
		t.Fatal(err)
	}

	var deployments appsv1.DeploymentList
	if err := c.List(context.Background(), &deployments, client.InNamespace("ns")); err != nil {
		t.Fatal(err)
	}
	if len(deployments.Items) != 1 || deployments.Items[0].Name != "acme-worker-new" {
		t.Fatalf("expected only acme-worker-new to survive, got %v", deployments.Items)
	}
}
