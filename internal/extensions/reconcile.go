package extensions

import (
	"context"

	"github.com/tembo-io/pgdataplane-operator/internal/logging"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// StatusPatcher persists an intermediate ExtensionStatus so progress is
// observable even if the reconcile loop is interrupted mid-run.
type StatusPatcher interface {
	PatchExtensionStatus(ctx context.Context, status []dbv1beta1.ExtensionStatus) error
}

// Reconcile runs the full C3+C4 loop: build status from actual state,
// patch it, plan and execute install/toggle actions, record per-location
// failures, and return the final status (spec.md §4.4 "Reconcile loop").
func Reconcile(
	ctx context.Context,
	x *Executor,
	patcher StatusPatcher,
	desiredSpec []dbv1beta1.Extension,
	trunkInstalls []dbv1beta1.TrunkInstall,
	priorStatus []dbv1beta1.ExtensionStatus,
) ([]dbv1beta1.ExtensionStatus, error) {
	desired := FromSpec(desiredSpec)

	actual, err := x.ListAllExtensions(ctx)
	if err != nil {
		return priorStatus, err
	}

	// Step 1+2: compute and patch status before acting.
	status := BuildStatus(desired, actual, priorStatus)
	if err := patcher.PatchExtensionStatus(ctx, status); err != nil {
		return status, err
	}

	// Supplemented feature: explicit trunk_installs are installed
	// independent of any location's enabled state.
	for _, ti := range trunkInstalls {
		if err := x.Install(ctx, ti.Name, ti.Version); err != nil {
			logging.FromContext(ctx).Error(err, "trunk install failed", "extension", ti.Name, "version", ti.Version)
		}
	}

	plan := Plan(desired, actual, priorStatus)

	installedThisCycle := map[string]bool{}
	statusByKey := indexStatusPointers(status)

	for _, action := range plan {
		switch action.Kind {
		case ActionSkippedVersionMismatch:
			// Logged here; no state change.
			logging.FromContext(ctx).Info("skipping extension location: desired version set but installed version unknown",
				"extension", action.ExtensionName, "database", action.Location.Database, "version", action.Location.Version)
			continue
		case ActionInstallThenToggle:
			if !action.Location.Enabled {
				// Disabled desired locations never trigger an install.
				continue
			}
			if !installedThisCycle[action.ExtensionName] {
				if err := x.Install(ctx, action.ExtensionName, action.Location.Version); err != nil {
					recordLocationError(statusByKey, action, err.Error())
					continue
				}
				installedThisCycle[action.ExtensionName] = true
			}
			applyToggle(ctx, x, action, statusByKey)
		case ActionToggle:
			applyToggle(ctx, x, action, statusByKey)
		}
	}

	if err := patcher.PatchExtensionStatus(ctx, status); err != nil {
		return status, err
	}
	return status, nil
}

func applyToggle(ctx context.Context, x *Executor, action PlannedAction, byKey map[priorKey]*dbv1beta1.ExtensionLocationStatus) {
	err := x.Toggle(ctx, action.ExtensionName, action.Location)
	key := priorKey{ext: action.ExtensionName, database: action.Location.Database, schema: action.Location.Schema}
	loc, ok := byKey[key]
	if !ok {
		return
	}
	if err != nil {
		loc.Error = true
		loc.ErrorMessage = err.Error()
		return
	}
	enabled := action.Location.Enabled
	loc.Enabled = &enabled
	loc.Error = false
	loc.ErrorMessage = ""
}

func recordLocationError(byKey map[priorKey]*dbv1beta1.ExtensionLocationStatus, action PlannedAction, message string) {
	key := priorKey{ext: action.ExtensionName, database: action.Location.Database, schema: action.Location.Schema}
	if loc, ok := byKey[key]; ok {
		loc.Error = true
		loc.ErrorMessage = message
	}
}

func indexStatusPointers(status []dbv1beta1.ExtensionStatus) map[priorKey]*dbv1beta1.ExtensionLocationStatus {
	out := make(map[priorKey]*dbv1beta1.ExtensionLocationStatus)
	for i := range status {
		for j := range status[i].Locations {
			loc := &status[i].Locations[j]
			out[priorKey{ext: status[i].Name, database: loc.Database, schema: loc.Schema}] = loc
		}
	}
	return out
}
