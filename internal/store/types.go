package store

import "strings"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// DetectType infers the backend from the DSN shape. Anything that does not
// look like a postgres URL is treated as a sqlite file path.
func DetectType(dsn string) DatabaseType {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DBTypePostgres
	}
	return DBTypeSQLite
}
