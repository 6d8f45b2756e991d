package database

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"hikayat/internal/config"
	"hikayat/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"

	// DriverMemory keeps profiles in process memory, without a database.
	DriverMemory = "memory"
)

type MethodsDB interface {
	CloseDB() error
	RunMigrations(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

type DB struct {
	*sqlx.DB
	Driver string
}

// DataSource resolves the sql driver name and DSN for the configured backend.
func DataSource(cfg config.DB) (string, string, error) {
	switch cfg.DbDRIVER {
	case DriverPostgres:
		return DriverPostgres, fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DbHOST, cfg.DbPORT, cfg.DbUSER, cfg.DbPASSWORD, cfg.DbNAME, cfg.DbSSLMODE,
		), nil
	case DriverPgx:
		return DriverPgx, fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DbUSER, cfg.DbPASSWORD, cfg.DbHOST, cfg.DbPORT, cfg.DbNAME, cfg.DbSSLMODE,
		), nil
	case DriverSQLite:
		return DriverSQLite, cfg.DbPATH, nil
	default:
		return "", "", fmt.Errorf("неизвестный драйвер БД: %q", cfg.DbDRIVER)
	}
}

func ConnectDB(ctx context.Context, cfg *config.Config, log logging.Logger) (*DB, error) {
	driver, dsn, err := DataSource(cfg.DB)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог БД: %w", err)
		}
		log.Info(ctx, "подключаемся к БД", "driver", driver, "path", dsn)
	} else {
		log.Info(ctx, "подключаемся к БД", "driver", driver, "host", cfg.DB.DbHOST, "dbname", cfg.DB.DbNAME)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	if driver == DriverSQLite {
		// go-sqlite does not support concurrent writes
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("ошибка настройки sqlite: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	dbStruct := &DB{DB: db, Driver: driver}

	if err := dbStruct.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := dbStruct.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка БД не пройдена: %w", err)
	}

	log.Info(ctx, "успешное подключение к БД", "driver", driver)
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func gooseDialect(driver string) string {
	if driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func (db *DB) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(gooseDialect(db.Driver)); err != nil {
		return fmt.Errorf("ошибка выбора диалекта миграций: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("подключение к БД не инициализировано")
	}

	return db.PingContext(ctx)
}
