package extensions

import (
	"sort"

	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

const notInstalledMessage = "Extension is not installed"

// BuildStatus computes the updated ExtensionStatus list from the
// desired extensions and the actually-installed list, preserving prior
// errors and clearing them only when actual truly matches desired
// (spec.md §3 ExtensionStatus invariants, §4.4 step 1).
func BuildStatus(desired []DesiredExtension, actual []ActualExtension, prior []dbv1beta1.ExtensionStatus) []dbv1beta1.ExtensionStatus {
	actualByName := make(map[string]ActualExtension, len(actual))
	for _, a := range actual {
		actualByName[a.Name] = a
	}
	priorLoc := indexPriorStatus(prior)
	priorDesc := make(map[string]string, len(prior))
	for _, es := range prior {
		priorDesc[es.Name] = es.Description
	}

	byName := make(map[string]*dbv1beta1.ExtensionStatus)
	order := make([]string, 0, len(desired))

	ensure := func(name, description string) *dbv1beta1.ExtensionStatus {
		if es, ok := byName[name]; ok {
			return es
		}
		if description == "" {
			description = priorDesc[name]
		}
		es := &dbv1beta1.ExtensionStatus{Name: name, Description: description}
		byName[name] = es
		order = append(order, name)
		return es
	}

	for _, ext := range desired {
		actualExt, extExists := actualByName[ext.Name]
		es := ensure(ext.Name, ext.Description)

		for _, loc := range ext.Locations {
			key := priorKey{ext: ext.Name, database: loc.Database, schema: loc.Schema}
			prev, hadPrev := priorLoc[key]

			var actualLoc ActualLocation
			var locExists bool
			if extExists {
				actualLoc, locExists = actualExt.findLocation(loc.Database)
			}

			switch {
			case locExists && actualLoc.Enabled == loc.Enabled:
				// Desired matches actual: clear any prior error.
				enabled := actualLoc.Enabled
				es.Locations = append(es.Locations, dbv1beta1.ExtensionLocationStatus{
					Database: loc.Database,
					Schema:   loc.Schema,
					Version:  actualLoc.Version,
					Enabled:  &enabled,
					Error:    false,
				})

			case locExists:
				// Present but not yet toggled to the desired state;
				// carry the prior error forward until the executor
				// runs a toggle and reports its own result.
				enabled := actualLoc.Enabled
				status := dbv1beta1.ExtensionLocationStatus{
					Database: loc.Database,
					Schema:   loc.Schema,
					Version:  actualLoc.Version,
					Enabled:  &enabled,
				}
				if hadPrev {
					status.Error = prev.Error
					status.ErrorMessage = prev.ErrorMessage
				}
				es.Locations = append(es.Locations, status)

			case loc.Enabled:
				// Desired-enabled location observed nowhere: record
				// the "not installed" placeholder (invariant ii).
				es.Locations = append(es.Locations, dbv1beta1.ExtensionLocationStatus{
					Database:     loc.Database,
					Schema:       loc.Schema,
					Enabled:      nil,
					Error:        true,
					ErrorMessage: notInstalledMessage,
				})

			case hadPrev:
				// Desired is disabled and actual confirms it is not
				// installed: leave the existing status entry
				// untouched (boundary scenario "toggle after error").
				es.Locations = append(es.Locations, prev)

			default:
				// Disabled and never observed or reported: no status
				// entry needed.
			}
		}
	}

	out := make([]dbv1beta1.ExtensionStatus, 0, len(order))
	for _, name := range order {
		es := byName[name]
		sort.Slice(es.Locations, func(i, j int) bool {
			if es.Locations[i].Database != es.Locations[j].Database {
				return es.Locations[i].Database < es.Locations[j].Database
			}
			return es.Locations[i].Schema < es.Locations[j].Schema
		})
		out = append(out, *es)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
