// Package appservice implements C9: one Deployment (and optional
// Service) per AppService entry, grounded on
// tembo-operator/src/app_service/manager.rs's generate_deployment /
// generate_service / reconcile_app_services, trimmed to the single
// inline-custom source the SUPPLEMENTED FEATURES section keeps.
package appservice

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// Manager reconciles the app-service deployments and services for one
// instance.
type Manager struct {
	Client client.Client
	Owner  client.FieldOwner
}

// Reconcile applies the desired Deployment/Service pair for every
// entry with an inline custom spec, then deletes any previously
// applied app-service object no longer desired.
func (m *Manager) Reconcile(ctx context.Context, db *dbv1beta1.Database) error {
	desiredNames := map[string]bool{}

	for _, svc := range db.Spec.AppServices {
		if svc.Source.Custom == nil {
			// Catalog-referenced app services resolve through an
			// external catalog lookup outside this engine's scope;
			// only inline custom specs are materialized directly.
			continue
		}
		name := naming.AppServiceDeployment(db, svc.Name)
		desiredNames[name] = true

		deployment := buildDeployment(db, svc, name)
		if err := m.apply(ctx, deployment); err != nil {
			return err
		}

		if svc.Source.Custom.Routing != nil {
			service := buildService(db, svc, name)
			if err := m.apply(ctx, service); err != nil {
				return err
			}
		} else {
			if err := m.deleteService(ctx, db.Namespace, name); err != nil {
				return err
			}
		}
	}

	return m.reap(ctx, db, desiredNames)
}

func buildDeployment(db *dbv1beta1.Database, svc dbv1beta1.AppService, name string) *appsv1.Deployment {
	labels := map[string]string{
		"app":                    name,
		naming.LabelComponent:    naming.ComponentAppService,
		naming.LabelCluster:      db.Name,
	}

	envVars := append([]corev1.EnvVar(nil), svc.Source.Custom.Env...)
	envVars = append(envVars, connectionEnvVars(db)...)

	containerPorts := []corev1.ContainerPort(nil)
	if r := svc.Source.Custom.Routing; r != nil {
		containerPorts = []corev1.ContainerPort{{ContainerPort: r.Port, Protocol: corev1.ProtocolTCP}}
	}

	falseVal := false
	trueVal := true
	uid := int64(65534)

	pod := corev1.PodSpec{
		Containers: []corev1.Container{
			{
				Name:      svc.Name,
				Image:     svc.Source.Custom.Image,
				Command:   svc.Source.Custom.Command,
				Env:       envVars,
				Ports:     containerPorts,
				Resources: svc.Source.Custom.Resources,
				SecurityContext: &corev1.SecurityContext{
					RunAsUser:                &uid,
					RunAsNonRoot:             &trueVal,
					AllowPrivilegeEscalation: &falseVal,
					Privileged:               &falseVal,
					ReadOnlyRootFilesystem:   &trueVal,
					Capabilities:             &corev1.Capabilities{Drop: []corev1.Capability{"ALL"}},
				},
			},
		},
	}

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: db.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       pod,
			},
		},
	}
}

func buildService(db *dbv1beta1.Database, svc dbv1beta1.AppService, name string) *corev1.Service {
	labels := map[string]string{
		"app":                 name,
		naming.LabelComponent: naming.ComponentAppService,
		naming.LabelCluster:   db.Name,
	}
	r := svc.Source.Custom.Routing
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: db.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Selector: labels,
			Ports: []corev1.ServicePort{
				{Name: "http", Port: r.Port, TargetPort: intstr.FromInt(int(r.Port))},
			},
		},
	}
}

// connectionEnvVars injects the three platform connection env vars,
// named per spec.md §4.9: <I_UPPER>_R/RO/RW_CONNECTION, hyphens
// replaced with underscores.
func connectionEnvVars(db *dbv1beta1.Database) []corev1.EnvVar {
	upper := strings.ToUpper(strings.ReplaceAll(db.Name, "-", "_"))
	secretName := naming.ConnectionSecret(db)

	mk := func(envName, key string) corev1.EnvVar {
		return corev1.EnvVar{
			Name: envName,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: secretName},
					Key:                  key,
				},
			},
		}
	}

	return []corev1.EnvVar{
		mk(upper+"_R_CONNECTION", "r_uri"),
		mk(upper+"_RO_CONNECTION", "ro_uri"),
		mk(upper+"_RW_CONNECTION", "rw_uri"),
	}
}

func (m *Manager) apply(ctx context.Context, obj client.Object) error {
	if err := m.Client.Patch(ctx, obj, client.Apply, client.ForceOwnership, m.Owner); err != nil {
		return errors.Wrapf(err, "applying app service object %s", obj.GetName())
	}
	return nil
}

func (m *Manager) deleteService(ctx context.Context, namespace, name string) error {
	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	if err := m.Client.Delete(ctx, svc); err != nil && !apierrors.IsNotFound(err) {
		return errors.Wrap(err, "deleting stale app service service")
	}
	return nil
}

// reap deletes every Deployment/Service labeled component=app-service,
// cluster=<I.name> that is not in desiredNames.
func (m *Manager) reap(ctx context.Context, db *dbv1beta1.Database, desiredNames map[string]bool) error {
	matching := client.MatchingLabels{
		naming.LabelComponent: naming.ComponentAppService,
		naming.LabelCluster:   db.Name,
	}

	var deployments appsv1.DeploymentList
	if err := m.Client.List(ctx, &deployments, client.InNamespace(db.Namespace), matching); err != nil {
		return errors.Wrap(err, "listing app service deployments")
	}
	for i := range deployments.Items {
		d := &deployments.Items[i]
		if desiredNames[d.Name] {
			continue
		}
		if err := m.Client.Delete(ctx, d); err != nil && !apierrors.IsNotFound(err) {
			return errors.Wrapf(err, "deleting stale app service deployment %s", d.Name)
		}
	}

	var services corev1.ServiceList
	if err := m.Client.List(ctx, &services, client.InNamespace(db.Namespace), matching); err != nil {
		return errors.Wrap(err, "listing app service services")
	}
	for i := range services.Items {
		s := &services.Items[i]
		if desiredNames[s.Name] {
			continue
		}
		if err := m.Client.Delete(ctx, s); err != nil && !apierrors.IsNotFound(err) {
			return errors.Wrapf(err, "deleting stale app service service %s", s.Name)
		}
	}

	return nil
}
