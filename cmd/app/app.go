package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"hikayat/internal/config"
	"hikayat/internal/database"
	handlers "hikayat/internal/handler"
	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/repository"
	"hikayat/internal/service"
	"hikayat/internal/storage"
)

type Application struct {
	DB       *database.DB
	Store    localstore.Store
	Repo     *repository.Repository
	Services *service.Service
	Handlers *handlers.Handlers
	Cfg      *config.Config
	Log      logging.Logger
}

// App connects the configured backend and wires repositories, services and handlers.
func App(ctx context.Context, cfg *config.Config, log logging.Logger) (*Application, error) {
	if cfg.ProfileSecretKey == "" {
		if cfg.DB.DbDRIVER != database.DriverMemory {
			return nil, errors.New("PROFILE_SECRET_KEY не установлен")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.ProfileSecretKey = secret
		log.Warn(ctx, "PROFILE_SECRET_KEY не задан, используется временный ключ")
	}

	a := &Application{Cfg: cfg, Log: log}

	// connection DB
	if cfg.DB.DbDRIVER == database.DriverMemory {
		a.Store = localstore.NewMemoryStore()
		log.Info(ctx, "используется хранилище в памяти")
	} else {
		db, err := database.ConnectDB(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
		}
		a.DB = db
		a.Store = localstore.NewSQLStore(db.DB)
	}

	// connection MinIO
	var objects storage.Storage
	if cfg.MinIO.Endpoint != "" {
		mctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		minioClient, err := storage.NewMinIOClient(mctx, cfg.MinIO)
		cancel()
		if err != nil {
			log.Warn(ctx, "MinIO недоступен, загрузка медиа отключена", "error", err)
		} else {
			objects = minioClient
		}
	}

	// enabling dependencies
	a.Repo = repository.NewRepository(a.Store, log)
	a.Services = service.NewService(a.Repo, cfg, objects, log)

	var db database.MethodsDB
	if a.DB != nil {
		db = a.DB
	}
	a.Handlers = handlers.NewHandlers(a.Services, db, cfg, log)

	return a, nil
}

func (a *Application) Close() error {
	if a.DB != nil {
		return a.DB.CloseDB()
	}
	return a.Store.Close()
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("ошибка генерации ключа: %w", err)
	}
	return hex.EncodeToString(b), nil
}
