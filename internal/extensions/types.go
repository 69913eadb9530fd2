package extensions

// ActualLocation is one observed (database, schema) row for an
// extension, as reported by ListExtensionsQuery.
type ActualLocation struct {
	Database string
	Schema   string
	Version  *string
	Enabled  bool
}

// ActualExtension is the observed state of one extension across every
// database queried.
type ActualExtension struct {
	Name        string
	Description string
	Locations   []ActualLocation
}

// findLocation returns the observed location matching database, if any.
func (a ActualExtension) findLocation(database string) (ActualLocation, bool) {
	for _, loc := range a.Locations {
		if loc.Database == database {
			return loc, true
		}
	}
	return ActualLocation{}, false
}

// ActionKind classifies what must happen for one desired location.
type ActionKind int

const (
	// ActionNone: desired already matches actual, nothing to do.
	ActionNone ActionKind = iota
	// ActionInstallThenToggle: the extension binary is not present at
	// all; install it, then toggle.
	ActionInstallThenToggle
	// ActionToggle: the binary is already installed somewhere for this
	// extension; only CREATE/DROP EXTENSION is needed.
	ActionToggle
	// ActionSkippedVersionMismatch: desired has a version but the
	// actual install has none; logged and left alone (spec.md §4.3).
	ActionSkippedVersionMismatch
)

// PlannedAction is one unit of work the executor (C4) should perform.
type PlannedAction struct {
	ExtensionName string
	Location      LocationDesire
	Kind          ActionKind
}

// LocationDesire is the desired-state half of a location, detached
// from the v1beta1 type so the planner has no API-package dependency
// beyond what it imports explicitly.
type LocationDesire struct {
	Enabled  bool
	Database string
	Schema   string
	Version  string
}
