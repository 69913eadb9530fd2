package cnpgprojector

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/params"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func TestProjectParameters_SharedPreloadLibrariesDeterministicOrder(t *testing.T) {
	assembled := []params.NamedValue{
		{Name: "shared_preload_libraries", Value: params.Multi("pg_stat_kcache", "auto_explain", "pg_stat_statements", "citus")},
	}
	available := map[string]bool{
		"pg_stat_kcache":     true,
		"auto_explain":       true,
		"pg_stat_statements": true,
		"citus":              true,
	}

	for i := 0; i < 10; i++ {
		out := projectParameters(assembled, available, false)
		want := []string{"citus", "pg_stat_statements", "pg_stat_kcache", "auto_explain"}
		if len(out.SharedPreloadLibraries) != len(want) {
			t.Fatalf("run %d: got %v, want %v", i, out.SharedPreloadLibraries, want)
		}
		for j := range want {
			if out.SharedPreloadLibraries[j] != want[j] {
				t.Fatalf("run %d: got %v, want %v", i, out.SharedPreloadLibraries, want)
			}
		}
	}
}

func TestProjectParameters_NewClusterLeavesSharedPreloadLibrariesNil(t *testing.T) {
	assembled := []params.NamedValue{
		{Name: "shared_preload_libraries", Value: params.Multi("citus")},
	}
	out := projectParameters(assembled, map[string]bool{"citus": true}, true)
	if out.SharedPreloadLibraries != nil {
		t.Fatalf("expected nil SharedPreloadLibraries for a new cluster, got %v", out.SharedPreloadLibraries)
	}
}

func TestProjectParameters_FiltersUnavailableLibraries(t *testing.T) {
	assembled := []params.NamedValue{
		{Name: "shared_preload_libraries", Value: params.Multi("citus", "pg_cron")},
	}
	out := projectParameters(assembled, map[string]bool{"citus": true}, false)
	if len(out.SharedPreloadLibraries) != 1 || out.SharedPreloadLibraries[0] != "citus" {
		t.Fatalf("expected only citus to survive filtering, got %v", out.SharedPreloadLibraries)
	}
}

func TestProjectBootstrap_ReferencesPreBoundSnapshot(t *testing.T) {
	db := &dbv1beta1.Database{
		ObjectMeta: metav1.ObjectMeta{Name: "clone", Namespace: "ns"},
		Spec: dbv1beta1.DatabaseSpec{
			Restore: &dbv1beta1.RestoreSpec{SourceInstance: "primary"},
		},
	}

	out := projectBootstrap(db)
	if out == nil || out.Recovery == nil || out.Recovery.VolumeSnapshots == nil {
		t.Fatalf("expected a populated recovery bootstrap block")
	}
	want := naming.RestoreVolumeSnapshot(db)
	got := out.Recovery.VolumeSnapshots.Storage
	if got.Name != want {
		t.Fatalf("expected storage to reference %s, got %s", want, got.Name)
	}
	if got.Kind != "VolumeSnapshot" {
		t.Fatalf("expected kind VolumeSnapshot, got %s", got.Kind)
	}
	if got.APIGroup == nil || *got.APIGroup == "" {
		t.Fatalf("expected a populated APIGroup")
	}
}

func TestProjectBootstrap_NoRestoreIsNil(t *testing.T) {
	db := &dbv1beta1.Database{ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "ns"}}
	if out := projectBootstrap(db); out != nil {
		t.Fatalf("expected nil bootstrap block without a restore spec, got %+v", out)
	}
}
