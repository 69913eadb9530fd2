package params_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tembo-io/pgdataplane-operator/internal/params"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// TestAssemble_DisallowedConfigDrop exercises spec.md §8 boundary
// scenario 1: a disallowed stack setting is dropped and the derived
// shared_preload_libraries value folds runtime + extension-induced
// libraries in priority order.
func TestAssemble_DisallowedConfigDrop(t *testing.T) {
	db := &dbv1beta1.Database{
		Spec: dbv1beta1.DatabaseSpec{
			Stack: &dbv1beta1.StackSpec{
				Parameters: []dbv1beta1.Parameter{
					{Name: "log_destination", Value: "yolo"},
				},
			},
			RuntimeConfig: []dbv1beta1.Parameter{
				{Name: "shared_preload_libraries", Value: "pg_partman_bgw"},
			},
			Extensions: []dbv1beta1.Extension{
				{
					Name:      "pg_cron",
					Locations: []dbv1beta1.ExtensionLocation{{Enabled: true, Database: "postgres"}},
				},
				{
					Name:      "pg_stat_statements",
					Locations: []dbv1beta1.ExtensionLocation{{Enabled: true, Database: "postgres"}},
				},
			},
		},
	}

	required := params.RequiredLoadTable{
		"pg_cron":             "pg_cron",
		"pg_stat_statements":   "pg_stat_statements",
	}

	out, err := params.Assemble(db, required, nil)
	require.NoError(t, err)

	byName := map[string]params.Value{}
	for _, nv := range out {
		byName[nv.Name] = nv.Value
	}

	_, hasLogDestination := byName["log_destination"]
	require.False(t, hasLogDestination, "disallowed parameter must be dropped")

	shared, ok := byName["shared_preload_libraries"]
	require.True(t, ok)
	require.True(t, shared.IsMulti())
	require.Equal(t, "pg_stat_statements,pg_cron,pg_partman_bgw", shared.RenderRaw())
}

func TestAssemble_MultiValueUnion(t *testing.T) {
	db := &dbv1beta1.Database{
		Spec: dbv1beta1.DatabaseSpec{
			Stack: &dbv1beta1.StackSpec{
				Parameters: []dbv1beta1.Parameter{{Name: "search_path", Value: "stack_schema"}},
			},
			RuntimeConfig: []dbv1beta1.Parameter{{Name: "search_path", Value: "runtime_schema"}},
		},
	}

	out, err := params.Assemble(db, nil, nil)
	require.NoError(t, err)

	for _, nv := range out {
		if nv.Name == "search_path" {
			require.True(t, nv.Value.IsMulti())
			require.ElementsMatch(t, []string{"stack_schema", "runtime_schema"}, nv.Value.Names())
			return
		}
	}
	t.Fatal("search_path not found in assembled output")
}

func TestAssemble_NoDisallowedEver(t *testing.T) {
	db := &dbv1beta1.Database{
		Spec: dbv1beta1.DatabaseSpec{
			OverrideConfig: []dbv1beta1.Parameter{
				{Name: "archive_mode", Value: "on"},
				{Name: "max_connections", Value: "200"},
			},
		},
	}

	out, err := params.Assemble(db, nil, nil)
	require.NoError(t, err)

	for _, nv := range out {
		require.False(t, params.IsDisallowed(nv.Name), "assembled list must never contain a disallowed name")
	}
}

func TestCombine_SingleValueIsError(t *testing.T) {
	_, err := params.Combine("max_connections", params.Single("100"), params.Multi("a"))
	require.Error(t, err)
	var target *params.ErrSingleValueNotMergeable
	require.ErrorAs(t, err, &target)
}

func TestRender_PriorityOrder(t *testing.T) {
	v := params.Multi("pg_partman_bgw", "pg_stat_kcache", "citus", "pg_stat_statements")
	require.Equal(t, "shared_preload_libraries = 'citus,pg_stat_statements,pg_stat_kcache,pg_partman_bgw'",
		params.Render("shared_preload_libraries", v))
}
