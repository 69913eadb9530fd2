package secrets

import (
	"context"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

type fakeExecer struct {
	queries []string
}

func (f *fakeExecer) Exec(ctx context.Context, namespace, pod, container string, argv []string) (sqlgateway.ExecResult, error) {
	f.queries = append(f.queries, argv[len(argv)-1])
	return sqlgateway.ExecResult{ExitOK: true}, nil
}

func newPrimaryPod(namespace, cluster string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cluster + "-1",
			Namespace: namespace,
			Labels:    map[string]string{"cluster": cluster, "role": "primary"},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning},
	}
}

func TestReconcile_NoBackupSkipsMetricsRole(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := dbv1beta1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	execer := &fakeExecer{}
	gw := sqlgateway.NewGateway(k8sfake.NewSimpleClientset(), execer)
	r := &Reconciler{Client: c, Owner: "test", Gw: gw}

	db := &dbv1beta1.Database{ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"}}
	if err := r.Reconcile(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	if len(execer.queries) != 0 {
		t.Fatalf("expected no SQL run without volume snapshot backups enabled, got %v", execer.queries)
	}
}

func TestReconcile_VolumeSnapshotBackupCreatesMetricsRole(t *testing.T) {
	scheme := runtime.NewScheme()
	if err := dbv1beta1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatal(err)
	}
	c := fake.NewClientBuilder().WithScheme(scheme).Build()
	execer := &fakeExecer{}
	clientset := k8sfake.NewSimpleClientset(newPrimaryPod("ns", "acme"))
	gw := sqlgateway.NewGateway(clientset, execer)
	r := &Reconciler{Client: c, Owner: "test", Gw: gw}

	db := &dbv1beta1.Database{
		ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"},
		Spec:       dbv1beta1.DatabaseSpec{Backup: &dbv1beta1.BackupSpec{VolumeSnapshot: true}},
	}
	if err := r.Reconcile(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	if len(execer.queries) != 1 {
		t.Fatalf("expected exactly one role-provisioning query, got %v", execer.queries)
	}
	if got := execer.queries[0]; !strings.Contains(got, "CREATE ROLE") || !strings.Contains(got, MetricsRoleName) {
		t.Fatalf("expected query to create the metrics role, got %s", got)
	}
}
