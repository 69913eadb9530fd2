// Package database implements C10: the top-level reconciler that
// orders every other component's phase per reconcile.
package database

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/tembo-io/pgdataplane-operator/internal/appservice"
	"github.com/tembo-io/pgdataplane-operator/internal/cnpgprojector"
	"github.com/tembo-io/pgdataplane-operator/internal/config"
	"github.com/tembo-io/pgdataplane-operator/internal/extensions"
	"github.com/tembo-io/pgdataplane-operator/internal/ingress"
	"github.com/tembo-io/pgdataplane-operator/internal/logging"
	"github.com/tembo-io/pgdataplane-operator/internal/metrics"
	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/params"
	"github.com/tembo-io/pgdataplane-operator/internal/paramreconciler"
	"github.com/tembo-io/pgdataplane-operator/internal/requeue"
	"github.com/tembo-io/pgdataplane-operator/internal/secrets"
	"github.com/tembo-io/pgdataplane-operator/internal/snapshot"
	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// ControllerName identifies this controller to controller-runtime.
const ControllerName = "database-controller"

const workerCountDefault = 2

// Reconciler holds every component collaborator C10 sequences.
type Reconciler struct {
	Client   client.Client
	Owner    client.FieldOwner
	Recorder record.EventRecorder
	Tracer   trace.Tracer
	Config   config.Config

	Secrets       *secrets.Reconciler
	Params        *paramreconciler.Reconciler
	Projector     *cnpgprojector.Projector
	Bootstrapper  *snapshot.Bootstrapper
	RestoreBinder *snapshot.Binder
	AppServices   *appservice.Manager
	Ingress       *ingress.Manager
	Gateway       *sqlgateway.Gateway

	RequiredLoad params.RequiredLoadTable
	StackCatalog params.StackCatalog
}

// +kubebuilder:rbac:groups=databases.tembo.io,resources=databases,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=databases.tembo.io,resources=databases/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=databases.tembo.io,resources=databases/finalizers,verbs=update

// Reconcile implements spec.md §4.10's per-event ordering: pause
// check, finalizer guard, stop short-circuit, then the strictly
// sequential phase chain C5 -> C6(/C7) -> C9 -> C8 -> readiness wait ->
// C3+C4 -> status.
func (r *Reconciler) Reconcile(ctx context.Context, req reconcile.Request) (reconcile.Result, error) {
	if r.Tracer != nil {
		var span trace.Span
		ctx, span = r.Tracer.Start(ctx, "Reconcile")
		defer span.End()
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.ReconcileDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	log := logging.FromContext(ctx)

	db := &dbv1beta1.Database{}
	if err := r.Client.Get(ctx, req.NamespacedName, db); err != nil {
		return reconcile.Result{}, client.IgnoreNotFound(err)
	}

	if paused(db) {
		log.V(1).Info("reconciliation paused")
		return toResult(requeue.Await()), nil
	}

	if done, result, err := r.handleFinalizer(ctx, db); done {
		return result, err
	}

	before := db.DeepCopy()

	if db.Spec.Stop {
		db.Status.Running = false
		return r.patchStatusAndReturn(ctx, db, before, requeue.After(requeue.Long))
	}

	action, err := r.reconcilePhases(ctx, db)
	db.Status.Running = err == nil

	if err == nil {
		now := metav1.Now()
		db.Status.LastFullyReconciledAt = &now
	} else {
		outcome = "error"
		log.Error(err, "reconcile phase failed")
		r.Recorder.Eventf(db, corev1.EventTypeWarning, "ReconcileError", "%s", err.Error())
		action = requeue.After(requeue.Long)
	}

	return r.patchStatusAndReturn(ctx, db, before, action)
}

func paused(db *dbv1beta1.Database) bool {
	v, ok := db.Annotations[naming.PauseAnnotation]
	if !ok {
		return false
	}
	paused, _ := strconv.ParseBool(v)
	return paused
}

func (r *Reconciler) handleFinalizer(ctx context.Context, db *dbv1beta1.Database) (bool, reconcile.Result, error) {
	if db.DeletionTimestamp.IsZero() {
		if !controllerutil.ContainsFinalizer(db, naming.Finalizer) {
			controllerutil.AddFinalizer(db, naming.Finalizer)
			if err := r.Client.Update(ctx, db); err != nil {
				return true, reconcile.Result{}, errors.Wrap(err, "adding finalizer")
			}
			return true, reconcile.Result{}, nil
		}
		return false, reconcile.Result{}, nil
	}

	if controllerutil.ContainsFinalizer(db, naming.Finalizer) {
		// Derived snapshot objects are intentionally left behind under
		// deletionPolicy=Retain (spec.md §9 open question); nothing
		// else requires out-of-band cleanup since every other child
		// object carries an owner reference.
		controllerutil.RemoveFinalizer(db, naming.Finalizer)
		if err := r.Client.Update(ctx, db); err != nil {
			return true, reconcile.Result{}, errors.Wrap(err, "removing finalizer")
		}
	}
	return true, reconcile.Result{}, nil
}

func (r *Reconciler) reconcilePhases(ctx context.Context, db *dbv1beta1.Database) (requeue.Action, error) {
	action := requeue.Await()

	if err := r.Secrets.Reconcile(ctx, db); err != nil {
		return action, errors.Wrap(err, "reconciling secrets")
	}

	assembled, err := r.Params.Reconcile(ctx, db, r.RequiredLoad, r.StackCatalog)
	if err != nil {
		return action, errors.Wrap(err, "reconciling parameters")
	}

	available, err := r.Params.AvailableLibraries(ctx, db.Namespace, db.Name)
	if err != nil {
		// PartialCapability (spec.md §7): proceed with an empty set,
		// filtering every shared_preload_libraries entry this cycle.
		available = map[string]bool{}
	}

	if db.Spec.Restore != nil {
		if err := r.RestoreBinder.Bind(ctx, db); err != nil {
			return action, errors.Wrap(err, "binding restore source snapshot")
		}
	}

	projectorAction, err := r.Projector.Project(ctx, db, assembled, available, r.Bootstrapper)
	if err != nil {
		return action, errors.Wrap(err, "projecting underlying cluster")
	}
	action = requeue.Sooner(action, projectorAction)

	if err := r.AppServices.Reconcile(ctx, db); err != nil {
		return action, errors.Wrap(err, "reconciling app services")
	}

	port := db.Spec.Port
	if port == 0 {
		port = secrets.DefaultPort
	}
	if err := r.Ingress.Reconcile(ctx, db, r.Config.BaseDomain, naming.UnderlyingCluster(db)+"-rw", port); err != nil {
		return action, errors.Wrap(err, "reconciling ingress routes")
	}

	ready, restartAction, err := r.checkPrimaryReady(ctx, db)
	if err != nil {
		return action, errors.Wrap(err, "checking primary readiness")
	}
	if !ready {
		return requeue.Sooner(action, restartAction), nil
	}

	executor := extensions.NewExecutor(r.Gateway, db.Namespace, db.Name)
	status, err := extensions.Reconcile(ctx, executor, &statusPatcher{client: r.Client, db: db}, db.Spec.Extensions, db.Spec.TrunkInstalls, db.Status.Extensions)
	db.Status.Extensions = status
	db.Status.ExtensionsUpdating = false
	if err != nil {
		return action, errors.Wrap(err, "reconciling extensions")
	}

	return action, nil
}

// checkPrimaryReady implements the §5 startup race: if the primary
// can't answer pg_postmaster_start_time(), check how long its pod has
// been not-ready relative to a forced-restart annotation, and force a
// re-creation if it has been too long.
func (r *Reconciler) checkPrimaryReady(ctx context.Context, db *dbv1beta1.Database) (bool, requeue.Action, error) {
	res, err := r.Gateway.Psql(ctx, db.Namespace, db.Name, "postgres", "select pg_postmaster_start_time();")
	if err == nil && res.Success {
		return true, requeue.Await(), nil
	}

	pod, findErr := sqlgateway.FindPrimaryPod(ctx, r.Gateway.Clientset, db.Namespace, db.Name)
	if findErr != nil {
		return false, requeue.After(requeue.Short), nil
	}

	notReadySince, ready := podNotReadySince(pod)
	if ready {
		return false, requeue.After(requeue.Short), nil
	}

	restartedAt := pod.Annotations[naming.RestartedAtAnnotation]
	restartedAtTime, parseErr := time.Parse(time.RFC3339, restartedAt)
	podOlderThanAnnotation := parseErr != nil || pod.CreationTimestamp.Time.Before(restartedAtTime)

	if podOlderThanAnnotation && time.Since(notReadySince) > 30*time.Second {
		if err := r.Client.Delete(ctx, pod); err != nil {
			return false, requeue.After(requeue.Medium), errors.Wrap(err, "deleting stalled primary pod")
		}
	}

	return false, requeue.After(requeue.Medium), nil
}

func podNotReadySince(pod *corev1.Pod) (time.Time, bool) {
	for _, c := range pod.Status.Conditions {
		if c.Type == corev1.PodReady {
			if c.Status == corev1.ConditionTrue {
				return time.Time{}, true
			}
			return c.LastTransitionTime.Time, false
		}
	}
	return pod.CreationTimestamp.Time, false
}

type statusPatcher struct {
	client client.Client
	db     *dbv1beta1.Database
}

func (p *statusPatcher) PatchExtensionStatus(ctx context.Context, status []dbv1beta1.ExtensionStatus) error {
	p.db.Status.Extensions = status
	p.db.Status.ExtensionsUpdating = true
	return p.client.Status().Update(ctx, p.db)
}

func (r *Reconciler) patchStatusAndReturn(ctx context.Context, db, before *dbv1beta1.Database, action requeue.Action) (reconcile.Result, error) {
	if err := r.Client.Status().Patch(ctx, db, client.MergeFrom(before)); err != nil {
		return reconcile.Result{}, errors.Wrap(err, "patching database status")
	}
	return toResult(action), nil
}

func toResult(a requeue.Action) reconcile.Result {
	if a.IsAwait() {
		metrics.RequeueTotal.WithLabelValues("await").Inc()
		return reconcile.Result{}
	}
	metrics.RequeueTotal.WithLabelValues("requeue").Inc()
	return reconcile.Result{RequeueAfter: a.Delay}
}

// SetupWithManager registers the controller with mgr.
func (r *Reconciler) SetupWithManager(mgr manager.Manager) error {
	workers := r.Config.Workers
	if workers <= 0 {
		workers = workerCountDefault
	}
	return builder.ControllerManagedBy(mgr).
		For(&dbv1beta1.Database{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: workers}).
		Owns(&corev1.Secret{}).
		Owns(&corev1.ConfigMap{}).
		Owns(&appsv1.Deployment{}).
		Owns(&corev1.Service{}).
		Complete(r)
}
