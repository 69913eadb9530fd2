package extensions

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/tembo-io/pgdataplane-operator/internal/params"
	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
)

// Registry is the trunk registry URL passed to `trunk install -r`.
const Registry = "https://registry.pgtrunk.io"

// ToggleError reports why a toggle could not be applied. It carries
// enough detail for the executor to decide between recording a SQL
// error on the location's status versus requesting a retry.
type ToggleError struct {
	Description string
	Retryable   bool
}

func (e *ToggleError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("toggle retryable: %s", e.Description)
	}
	return e.Description
}

// Executor runs installs and toggles against an instance's primary pod
// (C4).
type Executor struct {
	Gateway   *sqlgateway.Gateway
	Namespace string
	Instance  string
}

// NewExecutor builds an Executor.
func NewExecutor(gw *sqlgateway.Gateway, namespace, instance string) *Executor {
	return &Executor{Gateway: gw, Namespace: namespace, Instance: instance}
}

// Install runs `trunk install` for a desired extension/version. It does
// not look at any location's enabled state; Reconcile skips disabled
// locations before calling it.
func (x *Executor) Install(ctx context.Context, extName, version string) error {
	mapped := TrunkProjectName(extName)
	argv := []string{"trunk", "install", "-r", Registry, mapped}
	if version != "" {
		argv = append(argv, "--version", version)
	}

	pod, err := sqlgateway.FindPrimaryPod(ctx, x.Gateway.Clientset, x.Namespace, x.Instance)
	if err != nil {
		return err
	}
	res, err := x.Gateway.Execer.Exec(ctx, x.Namespace, pod.Name, sqlgateway.PrimaryContainerName, argv)
	if err != nil {
		return errors.Wrapf(err, "trunk install %s", mapped)
	}
	if !res.ExitOK {
		return errors.Errorf("trunk install %s failed: %s", mapped, res.Stderr)
	}
	return nil
}

// Toggle runs CREATE/DROP EXTENSION for one location, per spec.md §4.4.
func (x *Executor) Toggle(ctx context.Context, extName string, loc LocationDesire) error {
	cmd := toggleCommand(extName, loc)

	res, err := x.Gateway.Psql(ctx, x.Namespace, x.Instance, loc.Database, cmd)
	if err != nil {
		return &ToggleError{Description: err.Error(), Retryable: true}
	}
	if !res.Success {
		return &ToggleError{Description: res.Stderr, Retryable: false}
	}
	return nil
}

func toggleCommand(extName string, loc LocationDesire) string {
	quoted := `"` + extName + `"`
	if !loc.Enabled {
		return fmt.Sprintf("DROP EXTENSION IF EXISTS %s CASCADE;", quoted)
	}
	if loc.Schema != "" {
		return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s SCHEMA %s CASCADE;", quoted, loc.Schema)
	}
	return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s CASCADE;", quoted)
}

// ListDatabases runs ListDatabasesQuery and returns database names.
func (x *Executor) ListDatabases(ctx context.Context) ([]string, error) {
	res, err := x.Gateway.Psql(ctx, x.Namespace, x.Instance, "postgres", ListDatabasesQuery)
	if err != nil {
		return nil, err
	}
	rows := sqlgateway.ParseTable(res.Stdout)
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			out = append(out, row[0])
		}
	}
	return out, nil
}

// ListExtensions runs ListExtensionsQuery against db and returns one
// row per distinct extension name, preferring the enabled row.
func (x *Executor) ListExtensions(ctx context.Context, db string) ([]ExtRow, error) {
	res, err := x.Gateway.Psql(ctx, x.Namespace, x.Instance, db, ListExtensionsQuery)
	if err != nil {
		return nil, err
	}
	rows := sqlgateway.ParseTable(res.Stdout)

	out := make([]ExtRow, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		row0 := ExtRow{
			Name:        row[0],
			Version:     nullableString(row[1]),
			Enabled:     row[2] == "t" || row[2] == "true",
			Schema:      row[3],
			Description: row[4],
		}
		out = append(out, row0)
	}
	return out, nil
}

// ExtRow is one parsed row of ListExtensionsQuery.
type ExtRow struct {
	Name        string
	Version     *string
	Enabled     bool
	Schema      string
	Description string
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListSharedPreloadLibraries runs `SHOW shared_preload_libraries;` and
// parses the comma-separated result.
func (x *Executor) ListSharedPreloadLibraries(ctx context.Context) ([]string, error) {
	res, err := x.Gateway.Psql(ctx, x.Namespace, x.Instance, "postgres", ListSharedPreloadLibrariesQuery)
	if err != nil {
		return nil, err
	}
	rows := sqlgateway.ParseTable(res.Stdout)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil
	}
	raw := rows[0][0]
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}

// ListConfigParams runs `SHOW ALL;` and parses every row into a
// params.NamedValue, classifying comma-bearing values as Multi.
func (x *Executor) ListConfigParams(ctx context.Context) ([]params.NamedValue, error) {
	res, err := x.Gateway.Psql(ctx, x.Namespace, x.Instance, "postgres", ListConfigParamsQuery)
	if err != nil {
		return nil, err
	}
	rows := sqlgateway.ParseTable(res.Stdout)
	out := make([]params.NamedValue, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out = append(out, params.NamedValue{Name: row[0], Value: params.ParseRaw(row[1])})
	}
	return out, nil
}

// ListAllExtensions aggregates ListExtensions across every database
// returned by ListDatabases into the planner's ActualExtension shape.
func (x *Executor) ListAllExtensions(ctx context.Context) ([]ActualExtension, error) {
	dbs, err := x.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*ActualExtension)
	order := make([]string, 0)
	for _, db := range dbs {
		rows, err := x.ListExtensions(ctx, db)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			ae, ok := byName[row.Name]
			if !ok {
				ae = &ActualExtension{Name: row.Name, Description: row.Description}
				byName[row.Name] = ae
				order = append(order, row.Name)
			}
			ae.Locations = append(ae.Locations, ActualLocation{
				Database: db,
				Schema:   row.Schema,
				Version:  row.Version,
				Enabled:  row.Enabled,
			})
		}
	}

	out := make([]ActualExtension, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
