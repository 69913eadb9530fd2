package extensions

import (
	"testing"

	"github.com/stretchr/testify/require"

	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func strp(s string) *string { return &s }

func TestPlan_ExtensionRename(t *testing.T) {
	require.Equal(t, "pgvector", TrunkProjectName("vector"))
	require.Equal(t, "pg_cron", TrunkProjectName("pg_cron"))
}

func TestPlan_PatchVersionUpgrade_NoOp(t *testing.T) {
	desired := []DesiredExtension{{
		Name: "pg_stat_statements",
		Locations: []LocationDesire{{Enabled: true, Database: "postgres", Version: "1.10.0"}},
	}}
	actual := []ActualExtension{{
		Name: "pg_stat_statements",
		Locations: []ActualLocation{{Database: "postgres", Enabled: true, Version: strp("1.10")}},
	}}

	plan := Plan(desired, actual, nil)
	require.Empty(t, plan, "patch-absent vs patch-equal must classify as no-op")
}

func TestPlan_ToggleAfterError_NoThrash(t *testing.T) {
	desired := []DesiredExtension{{
		Name:      "postgis",
		Locations: []LocationDesire{{Enabled: false, Database: "db1"}},
	}}
	prior := []dbv1beta1.ExtensionStatus{{
		Name: "postgis",
		Locations: []dbv1beta1.ExtensionLocationStatus{{
			Database: "db1", Enabled: nil, Error: true, ErrorMessage: "Extension is not installed",
		}},
	}}

	plan := Plan(desired, nil, prior)
	require.Empty(t, plan, "a previously-failed, now-matching-disabled location must not be retoggled")
}

func TestPlan_InstallThenToggle_NewExtension(t *testing.T) {
	desired := []DesiredExtension{{
		Name:      "pg_cron",
		Locations: []LocationDesire{{Enabled: true, Database: "postgres", Version: "1.6.2"}},
	}}
	plan := Plan(desired, nil, nil)
	require.Len(t, plan, 1)
	require.Equal(t, ActionInstallThenToggle, plan[0].Kind)
}

func TestBuildStatus_NotInstalledPlaceholder(t *testing.T) {
	desired := []DesiredExtension{{
		Name:      "postgis",
		Locations: []LocationDesire{{Enabled: true, Database: "db1"}},
	}}
	status := BuildStatus(desired, nil, nil)
	require.Len(t, status, 1)
	require.Len(t, status[0].Locations, 1)
	loc := status[0].Locations[0]
	require.Nil(t, loc.Enabled)
	require.True(t, loc.Error)
	require.Equal(t, "Extension is not installed", loc.ErrorMessage)
}
