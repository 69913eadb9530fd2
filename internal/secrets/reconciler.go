// Package secrets implements the first phase of C10: it owns the
// instance's connection secret and optional metrics secret (spec.md
// §6 "Secrets"), generating credentials once and leaving them stable
// across reconciles the way the teacher's reconcilePGUserSecret does
// for PostgresCluster.
package secrets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// DefaultPort is used when Spec.Port is unset.
const DefaultPort = 5432

// MetricsRoleName is the Postgres role the metrics secret's credentials
// authenticate as.
const MetricsRoleName = "tembo_pg_monitor"

// Reconciler owns the instance's connection and metrics secrets.
type Reconciler struct {
	Client client.Client
	Owner  client.FieldOwner
	Gw     *sqlgateway.Gateway
}

// Reconcile ensures the connection secret exists with a stable
// username/password, refreshing only the derived URI/host/port keys
// every cycle so a port change propagates without rotating
// credentials.
func (r *Reconciler) Reconcile(ctx context.Context, db *dbv1beta1.Database) error {
	name := naming.ConnectionSecret(db)
	existing := &corev1.Secret{}
	err := r.Client.Get(ctx, client.ObjectKey{Namespace: db.Namespace, Name: name}, existing)
	notFound := apierrors.IsNotFound(err)
	if err != nil && !notFound {
		return errors.Wrap(err, "getting connection secret")
	}

	username := "postgres"
	var password string
	if notFound {
		password = generatePassword()
	} else {
		password = string(existing.Data["password"])
		if password == "" {
			password = generatePassword()
		}
		if u := string(existing.Data["username"]); u != "" {
			username = u
		}
	}

	port := db.Spec.Port
	if port == 0 {
		port = DefaultPort
	}
	host := naming.UnderlyingCluster(db) + "-rw"
	roHost := naming.UnderlyingCluster(db) + "-ro"

	secret := &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: db.Namespace,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"username": username,
			"password": password,
			"host":     host,
			"port":     fmt.Sprintf("%d", port),
			"uri":      connectionURI(username, password, host, port, ""),
			"rw_uri":   connectionURI(username, password, host, port, ""),
			"ro_uri":   connectionURI(username, password, roHost, port, ""),
			"r_uri":    connectionURI(username, password, roHost, port, ""),
		},
	}

	if err := r.Client.Patch(ctx, secret, client.Apply, client.ForceOwnership, r.Owner); err != nil {
		return errors.Wrap(err, "applying connection secret")
	}

	if db.Spec.Backup != nil && db.Spec.Backup.VolumeSnapshot {
		return r.reconcileMetricsSecret(ctx, db)
	}
	return nil
}

func (r *Reconciler) reconcileMetricsSecret(ctx context.Context, db *dbv1beta1.Database) error {
	name := naming.MetricsSecret(db)
	existing := &corev1.Secret{}
	err := r.Client.Get(ctx, client.ObjectKey{Namespace: db.Namespace, Name: name}, existing)
	notFound := apierrors.IsNotFound(err)
	if err != nil && !notFound {
		return errors.Wrap(err, "getting metrics secret")
	}

	password := string(existing.Data["password"])
	if password == "" {
		password = generatePassword()
	}

	secret := &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: db.Namespace,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"username": MetricsRoleName,
			"password": password,
		},
	}
	if err := r.Client.Patch(ctx, secret, client.Apply, client.ForceOwnership, r.Owner); err != nil {
		return errors.Wrap(err, "applying metrics secret")
	}

	if err := r.createMetricsRole(ctx, db, password); err != nil {
		return errors.Wrap(err, "creating metrics role")
	}
	return nil
}

// createMetricsRole ensures the tembo_pg_monitor login role exists with
// the secret's current password, creating it the first time and
// re-asserting the password on every cycle after (spec.md §6).
func (r *Reconciler) createMetricsRole(ctx context.Context, db *dbv1beta1.Database, password string) error {
	if r.Gw == nil {
		return nil
	}
	query := fmt.Sprintf(
		`DO $$ BEGIN
			IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = '%s') THEN
				CREATE ROLE %s WITH LOGIN PASSWORD '%s';
			ELSE
				ALTER ROLE %s WITH LOGIN PASSWORD '%s';
			END IF;
		END $$;`,
		MetricsRoleName, MetricsRoleName, password, MetricsRoleName, password,
	)
	res, err := r.Gw.Psql(ctx, db.Namespace, db.Name, "postgres", query)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.Errorf("creating metrics role: %s", res.Stderr)
	}
	return nil
}

func connectionURI(username, password, host string, port int32, db string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", username, password, host, port, defaultDB(db))
}

func defaultDB(db string) string {
	if db == "" {
		return "postgres"
	}
	return db
}

func generatePassword() string {
	return uuid.NewString()
}
