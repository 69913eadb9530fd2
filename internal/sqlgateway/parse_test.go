package sqlgateway_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
)

func TestParseTable(t *testing.T) {
	text := " datname  \n----------\n postgres\n template1\n(2 rows)\n\n"
	rows := sqlgateway.ParseTable(text)
	if diff := cmp.Diff([][]string{{"postgres"}, {"template1"}}, rows); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestParseTable_MultiColumn(t *testing.T) {
	text := " name | version \n------+---------\n vector |  0.5.0\n(1 row)\n"
	rows := sqlgateway.ParseTable(text)
	require.Len(t, rows, 1)
	if diff := cmp.Diff([]string{"vector", "0.5.0"}, rows[0]); diff != "" {
		t.Errorf("unexpected row (-want +got):\n%s", diff)
	}
}

func TestParseTable_Empty(t *testing.T) {
	text := " datname \n----------\n(0 rows)\n"
	rows := sqlgateway.ParseTable(text)
	require.Len(t, rows, 0)
}
