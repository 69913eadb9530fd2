package params

// MultiValueNames lists the five fixed parameter names whose values are
// order-sensitive sets, rather than scalars (spec.md §3).
var MultiValueNames = []string{
	"shared_preload_libraries",
	"local_preload_libraries",
	"session_preload_libraries",
	"log_destination",
	"search_path",
}

// IsMultiValueName reports whether name is one of MultiValueNames.
func IsMultiValueName(name string) bool {
	for _, n := range MultiValueNames {
		if n == name {
			return true
		}
	}
	return false
}

// Disallowed is the fixed set of 65 parameter names a user may never
// set directly, ported from the original engine's DISALLOWED_CONFIGS.
var Disallowed = []string{
	"allow_system_table_mods",
	"archive_cleanup_command",
	"archive_command",
	"archive_mode",
	"bonjour",
	"bonjour_name",
	"cluster_name",
	"config_file",
	"data_directory",
	"data_sync_retry",
	"event_source",
	"external_pid_file",
	"full_page_writes",
	"hba_file",
	"hot_standby",
	"ident_file",
	"jit_provider",
	"listen_addresses",
	"log_destination",
	"log_directory",
	"log_file_mode",
	"log_filename",
	"log_rotation_age",
	"log_rotation_size",
	"log_truncate_on_rotation",
	"logging_collector",
	"port",
	"primary_conninfo",
	"primary_slot_name",
	"promote_trigger_file",
	"recovery_end_command",
	"recovery_min_apply_delay",
	"recovery_target",
	"recovery_target_action",
	"recovery_target_inclusive",
	"recovery_target_lsn",
	"recovery_target_name",
	"recovery_target_time",
	"recovery_target_timeline",
	"recovery_target_xid",
	"restart_after_crash",
	"restore_command",
	"ssl",
	"ssl_ca_file",
	"ssl_cert_file",
	"ssl_ciphers",
	"ssl_crl_file",
	"ssl_dh_params_file",
	"ssl_ecdh_curve",
	"ssl_key_file",
	"ssl_max_protocol_version",
	"ssl_passphrase_command",
	"ssl_passphrase_command_supports_reload",
	"ssl_prefer_server_ciphers",
	"stats_temp_directory",
	"synchronous_standby_names",
	"syslog_facility",
	"syslog_ident",
	"syslog_sequence_numbers",
	"syslog_split_messages",
	"unix_socket_directories",
	"unix_socket_group",
	"unix_socket_permissions",
	"wal_level",
	"wal_log_hints",
}

var disallowedSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Disallowed))
	for _, n := range Disallowed {
		s[n] = struct{}{}
	}
	return s
}()

// IsDisallowed reports whether name may never be set by the user.
func IsDisallowed(name string) bool {
	_, ok := disallowedSet[name]
	return ok
}

// DefaultRequiredLoadTable maps well-known extension names to the
// shared_preload_libraries entry they require, mirroring the
// requires_load fixture entries exercised in
// tembo-operator/src/apis/postgres_parameters.rs's test suite
// (pg_cron, pg_stat_statements) plus the other extensions the priority
// list already special-cases.
var DefaultRequiredLoadTable = RequiredLoadTable{
	"pg_cron":            "pg_cron",
	"pg_stat_statements": "pg_stat_statements",
	"pg_stat_kcache":     "pg_stat_kcache",
	"citus":              "citus",
	"pg_partman":         "pg_partman_bgw",
	"pgaudit":            "pgaudit",
}
