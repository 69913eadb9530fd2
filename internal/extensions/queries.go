package extensions

// The read-only queries below are the SQL dialect boundary named in
// spec.md §6; all parsed rows move into ExtRow/ActualExtension values
// before use elsewhere (Design note: string-level SQL parsing is
// retained as the boundary, not threaded through the engine).
const (
	ListDatabasesQuery = `SELECT datname FROM pg_database WHERE datname != 'template0';`

	ListSharedPreloadLibrariesQuery = `SHOW shared_preload_libraries;`

	ListConfigParamsQuery = `SHOW ALL;`

	// ListExtensionsQuery unions installed extensions (joined against
	// pg_namespace for their schema) with every not-yet-installed
	// extension known to pg_available_extensions, then keeps one row
	// per name, preferring the installed (enabled) row.
	ListExtensionsQuery = `select
distinct on
(name) *
from
(
select
    name,
    version,
    enabled,
    schema,
    description
from
    (
    select
        t0.extname as name,
        t0.extversion as version,
        true as enabled,
        t1.nspname as schema,
        comment as description
    from
        (
        select
            extnamespace,
            extname,
            extversion
        from
            pg_extension
) t0,
        (
        select
            oid,
            nspname
        from
            pg_namespace
) t1,
        (
        select
            name,
            comment
        from
            pg_catalog.pg_available_extensions
) t2
    where
        t1.oid = t0.extnamespace
        and t2.name = t0.extname
) installed
union
select
    name,
    default_version as version,
    false as enabled,
    'public' as schema,
    comment as description
from
    pg_catalog.pg_available_extensions
order by
name asc,
enabled desc
) combined
order by
name asc,
enabled desc
`

	PgPostmasterStartTimeQuery = `SELECT pg_postmaster_start_time();`
)
