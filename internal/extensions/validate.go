package extensions

import "regexp"

// validName matches both extension names and database names per
// spec.md §3.
var validName = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]*[-_]?)*[a-zA-Z0-9]+$`)

// CheckName reports whether name is a syntactically valid extension or
// database identifier.
func CheckName(name string) bool {
	return validName.MatchString(name)
}
