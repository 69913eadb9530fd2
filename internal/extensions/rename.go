package extensions

// renameTable maps a user-facing extension name onto the trunk
// project (binary package) name it is actually published under, where
// the two differ.
var renameTable = map[string]string{
	"vector":    "pgvector",
	"embedding": "pg_embedding",
	"pgml":      "postgresml",
	"columnar":  "hydra_columnar",
	"currency":  "pg_currency",
}

// TrunkProjectName returns the binary package name for a user-facing
// extension name, falling back to the name itself when no mapping
// exists.
func TrunkProjectName(name string) string {
	if mapped, ok := renameTable[name]; ok {
		return mapped
	}
	return name
}
