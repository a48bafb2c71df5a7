package app

import (
	"github.com/tukangsapu/sapu/internal/store"
	"github.com/tukangsapu/sapu/internal/store/postgres"
	"github.com/tukangsapu/sapu/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.ReportStore, error) {
	if store.DetectType(dsn) == store.DBTypePostgres {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
