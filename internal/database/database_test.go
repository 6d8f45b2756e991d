package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikayat/internal/config"
	"hikayat/internal/logging"
)

func TestDataSource(t *testing.T) {
	base := config.DB{
		DbHOST:     "db",
		DbPORT:     "5432",
		DbUSER:     "u",
		DbPASSWORD: "p",
		DbNAME:     "hikayat",
		DbSSLMODE:  "disable",
		DbPATH:     "/tmp/h.db",
	}

	tests := []struct {
		name       string
		driver     string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{"postgres", "postgres", "postgres", "host=db port=5432 user=u password=p dbname=hikayat sslmode=disable", false},
		{"pgx", "pgx", "pgx", "postgres://u:p@db:5432/hikayat?sslmode=disable", false},
		{"sqlite", "sqlite", "sqlite", "/tmp/h.db", false},
		{"неизвестный драйвер", "oracle", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.DbDRIVER = tt.driver

			driver, dsn, err := DataSource(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestGooseDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", gooseDialect(DriverSQLite))
	assert.Equal(t, "postgres", gooseDialect(DriverPgx))
	assert.Equal(t, "postgres", gooseDialect(DriverPostgres))
}

func TestHealthCheck_NotInitialized(t *testing.T) {
	var db *DB
	assert.Error(t, db.HealthCheck(context.Background()))
}

func TestConnectDB_SQLite(t *testing.T) {
	cfg := &config.Config{DB: config.DB{
		DbDRIVER: DriverSQLite,
		DbPATH:   filepath.Join(t.TempDir(), "nested", "hikayat.db"),
	}}

	db, err := ConnectDB(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	defer db.CloseDB()

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM local_storage`)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// migrations are idempotent
	assert.NoError(t, db.RunMigrations(context.Background()))
}
