// Package config loads process-level configuration from the
// environment, the way the rest of the pack's controllers do via
// kelseyhightower/envconfig rather than hand-rolled os.Getenv calls.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config is the engine's process configuration.
type Config struct {
	// BaseDomain controls the hostname under which Postgres routes are
	// materialized. When empty, ingress reconciliation (C8) is skipped
	// and the engine remains functional for in-cluster access only
	// (spec.md §6).
	BaseDomain string `envconfig:"DATA_PLANE_BASEDOMAIN"`

	// MetricsAddr is the bind address for the controller-runtime
	// metrics endpoint.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":8080"`

	// HealthProbeAddr is the bind address for the liveness/readiness
	// probe endpoint.
	HealthProbeAddr string `envconfig:"HEALTH_PROBE_ADDR" default:":8081"`

	// LeaderElect enables controller-runtime leader election for
	// multi-replica deployments of this controller.
	LeaderElect bool `envconfig:"LEADER_ELECT" default:"false"`

	// Workers sets MaxConcurrentReconciles for the Database controller.
	Workers int `envconfig:"WORKERS" default:"2"`
}

// Load reads the process configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "loading process configuration")
	}
	return c, nil
}
