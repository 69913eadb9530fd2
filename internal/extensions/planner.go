// Package extensions implements the three-way extension reconciler:
// the planner (C3), which diffs desired vs actual state and classifies
// the work, and the executor (C4), which carries it out.
package extensions

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

// DesiredExtension is the planner's view of a spec extension.
type DesiredExtension struct {
	Name        string
	Description string
	Locations   []LocationDesire
}

// FromSpec converts the API type into the planner's internal shape.
func FromSpec(exts []dbv1beta1.Extension) []DesiredExtension {
	out := make([]DesiredExtension, 0, len(exts))
	for _, e := range exts {
		d := DesiredExtension{Name: e.Name, Description: e.Description}
		for _, loc := range e.Locations {
			version := ""
			if loc.Version != nil {
				version = *loc.Version
			}
			d.Locations = append(d.Locations, LocationDesire{
				Enabled:  loc.Enabled,
				Database: loc.Database,
				Schema:   loc.Schema,
				Version:  version,
			})
		}
		out = append(out, d)
	}
	return out
}

// Plan diffs desired against actual and classifies every desired
// location into an action the executor should perform (spec.md §4.3).
// priorStatus supplies the error-memory needed to avoid re-toggling a
// location that is already known to have failed and whose desired
// state has not changed (the "toggle after error" boundary scenario).
func Plan(desired []DesiredExtension, actual []ActualExtension, priorStatus []dbv1beta1.ExtensionStatus) []PlannedAction {
	actualByName := make(map[string]ActualExtension, len(actual))
	for _, a := range actual {
		actualByName[a.Name] = a
	}
	priorByNameLoc := indexPriorStatus(priorStatus)

	var plan []PlannedAction
	for _, ext := range desired {
		actualExt, extExists := actualByName[ext.Name]
		for _, loc := range ext.Locations {
			kind := classifyLocation(ext.Name, loc, actualExt, extExists)

			if kind != ActionNone && isThrashGuarded(priorByNameLoc, ext.Name, loc) {
				kind = ActionNone
			}

			if kind == ActionNone {
				continue
			}
			plan = append(plan, PlannedAction{ExtensionName: ext.Name, Location: loc, Kind: kind})
		}
	}
	return plan
}

func classifyLocation(name string, loc LocationDesire, actualExt ActualExtension, extExists bool) ActionKind {
	if !extExists {
		return ActionInstallThenToggle
	}

	actualLoc, locExists := actualExt.findLocation(loc.Database)
	if !locExists {
		// The binary exists (it's installed for some other database),
		// so only CREATE/DROP EXTENSION is required here.
		return ActionToggle
	}

	if loc.Version != "" && actualLoc.Version == nil {
		// Desired has a version, actual has none recorded: log and
		// skip, do not force a reinstall.
		return ActionSkippedVersionMismatch
	}

	reinstall := false
	if loc.Version != "" && actualLoc.Version != nil {
		reinstall = versionRequiresReinstall(loc.Version, *actualLoc.Version)
	}

	enabledDiffers := actualLoc.Enabled != loc.Enabled

	switch {
	case reinstall:
		return ActionInstallThenToggle
	case enabledDiffers:
		return ActionToggle
	default:
		return ActionNone
	}
}

// versionRequiresReinstall compares desired and actual versions by
// semver major.minor as the primary keys. A patch difference only
// triggers reinstall when both sides carry a patch component.
func versionRequiresReinstall(desired, actual string) bool {
	dv, dErr := semver.NewVersion(desired)
	av, aErr := semver.NewVersion(actual)
	if dErr != nil || aErr != nil {
		// Unparsable versions are compared as opaque strings.
		return desired != actual
	}

	if dv.Major() != av.Major() || dv.Minor() != av.Minor() {
		return true
	}

	dHasPatch := hasPatchComponent(desired)
	aHasPatch := hasPatchComponent(actual)
	if dHasPatch && aHasPatch {
		return dv.Patch() != av.Patch()
	}
	return false
}

// hasPatchComponent reports whether the raw version string spells out
// a third (patch) numeric component, e.g. "1.10.0" but not "1.10".
func hasPatchComponent(raw string) bool {
	return strings.Count(strings.SplitN(raw, "-", 2)[0], ".") >= 2
}

type priorKey struct{ ext, database, schema string }

func indexPriorStatus(status []dbv1beta1.ExtensionStatus) map[priorKey]dbv1beta1.ExtensionLocationStatus {
	out := make(map[priorKey]dbv1beta1.ExtensionLocationStatus)
	for _, es := range status {
		for _, loc := range es.Locations {
			out[priorKey{ext: es.Name, database: loc.Database, schema: loc.Schema}] = loc
		}
	}
	return out
}

// isThrashGuarded reports whether the location previously failed and
// the desired enabled state has not changed since, per the "toggle
// after error" boundary scenario (spec.md §8 #4, §4.3).
func isThrashGuarded(prior map[priorKey]dbv1beta1.ExtensionLocationStatus, ext string, loc LocationDesire) bool {
	p, ok := prior[priorKey{ext: ext, database: loc.Database, schema: loc.Schema}]
	if !ok || !p.Error {
		return false
	}
	// "Not installed" placeholder rows carry Enabled == nil; desired
	// disabled now matches that observed state, so there is nothing to
	// toggle.
	if p.Enabled == nil {
		return !loc.Enabled
	}
	return *p.Enabled == loc.Enabled
}
