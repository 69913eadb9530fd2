// Command manager runs the Database controller.
package main

import (
	"fmt"
	"os"

	storagesnapshotv1 "github.com/kubernetes-csi/external-snapshotter/client/v6/apis/volumesnapshot/v1"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/tembo-io/pgdataplane-operator/internal/appservice"
	"github.com/tembo-io/pgdataplane-operator/internal/cnpg"
	"github.com/tembo-io/pgdataplane-operator/internal/cnpgprojector"
	"github.com/tembo-io/pgdataplane-operator/internal/config"
	databasecontroller "github.com/tembo-io/pgdataplane-operator/internal/controller/database"
	"github.com/tembo-io/pgdataplane-operator/internal/ingress"
	"github.com/tembo-io/pgdataplane-operator/internal/logging"
	"github.com/tembo-io/pgdataplane-operator/internal/params"
	"github.com/tembo-io/pgdataplane-operator/internal/paramreconciler"
	"github.com/tembo-io/pgdataplane-operator/internal/secrets"
	"github.com/tembo-io/pgdataplane-operator/internal/snapshot"
	"github.com/tembo-io/pgdataplane-operator/internal/sqlgateway"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
	traefikv1alpha1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/traefik/v1alpha1"
)

// FieldOwner is the fixed field-manager identity every server-side
// apply in this engine uses (spec.md §5 "shared-resource policy").
const FieldOwner = client.FieldOwner("pgdataplane-operator")

func main() {
	var dev bool

	root := &cobra.Command{
		Use:   "manager",
		Short: "Runs the managed Postgres data-plane controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dev)
		},
	}
	root.Flags().BoolVar(&dev, "dev", false, "enable development-formatted logging")
	_ = viper.BindPFlag("dev", root.Flags().Lookup("dev"))
	viper.SetEnvPrefix("MANAGER")
	viper.AutomaticEnv()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dev bool) error {
	log, err := logging.NewZapLogger(dev || viper.GetBool("dev"))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logging.SetLog(log)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.BaseDomain == "" {
		log.Info("DATA_PLANE_BASEDOMAIN not set, ingress reconciliation disabled")
	}

	scheme := runtime.NewScheme()
	for _, add := range []func(*runtime.Scheme) error{
		clientgoscheme.AddToScheme,
		dbv1beta1.AddToScheme,
		traefikv1alpha1.AddToScheme,
		cnpg.AddToScheme,
		storagesnapshotv1.AddToScheme,
	} {
		if err := add(scheme); err != nil {
			return fmt.Errorf("registering scheme: %w", err)
		}
	}

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("loading kubeconfig: %w", err)
	}

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: cfg.MetricsAddr},
		HealthProbeBindAddress: cfg.HealthProbeAddr,
		LeaderElection:         cfg.LeaderElect,
		LeaderElectionID:       "pgdataplane-operator-lock",
	})
	if err != nil {
		return fmt.Errorf("building manager: %w", err)
	}

	execClient, err := sqlgateway.NewClient(restConfig)
	if err != nil {
		return fmt.Errorf("building sql gateway client: %w", err)
	}
	gateway := sqlgateway.NewGateway(execClient.Clientset, execClient)

	reconciler := &databasecontroller.Reconciler{
		Client:   mgr.GetClient(),
		Owner:    FieldOwner,
		Recorder: mgr.GetEventRecorderFor(databasecontroller.ControllerName),
		Tracer:   trace.NewNoopTracerProvider().Tracer(databasecontroller.ControllerName),
		Config:   cfg,

		Secrets:       &secrets.Reconciler{Client: mgr.GetClient(), Owner: FieldOwner, Gw: gateway},
		Params:        &paramreconciler.Reconciler{Client: mgr.GetClient(), Owner: FieldOwner, Gw: gateway},
		Projector:     &cnpgprojector.Projector{Client: mgr.GetClient(), Owner: FieldOwner},
		Bootstrapper:  &snapshot.Bootstrapper{Client: mgr.GetClient(), Owner: FieldOwner},
		RestoreBinder: &snapshot.Binder{Client: mgr.GetClient(), Owner: FieldOwner},
		AppServices:   &appservice.Manager{Client: mgr.GetClient(), Owner: FieldOwner},
		Ingress:       &ingress.Manager{Client: mgr.GetClient(), Owner: FieldOwner},
		Gateway:       gateway,

		RequiredLoad: params.DefaultRequiredLoadTable,
		StackCatalog: params.NoStackCatalog{},
	}

	if err := reconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("setting up controller: %w", err)
	}

	ctx := ctrl.SetupSignalHandler()
	log.Info("starting manager")
	return mgr.Start(ctx)
}
