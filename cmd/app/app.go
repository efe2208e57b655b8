package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/laconfrerie/confrerie-api/internal/api"
	"github.com/laconfrerie/confrerie-api/internal/config"
	"github.com/laconfrerie/confrerie-api/internal/db"
	"github.com/laconfrerie/confrerie-api/internal/logger"
	"github.com/laconfrerie/confrerie-api/internal/repository"
	"github.com/laconfrerie/confrerie-api/internal/repository/dao"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	store, err := openStore(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}

	s, err := api.NewServer(conf, store)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	defer s.Close()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("storage", conf.Storage.Driver))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// openStore picks the document backend. DATABASE_URL always means postgres.
func openStore(conf *config.AppConfig) (repository.DocumentDAO, error) {
	var (
		gormDB *gorm.DB
		err    error
	)

	dbURL := os.Getenv("DATABASE_URL")
	switch {
	case dbURL != "":
		gormDB, err = db.OpenPostgresWithURL(dbURL)
	case conf.Storage.Driver == config.StoragePostgres:
		gormDB, err = db.OpenPostgres(conf.Postgres)
	case conf.Storage.Driver == config.StorageSQLite:
		gormDB, err = db.OpenSQLite(conf.Storage.SQLitePath)
	default:
		return dao.NewFileDAO(conf.Storage.DataFile), nil
	}
	if err != nil {
		return nil, err
	}

	return dao.NewDocumentDAO(gormDB, conf.Storage.DocumentKey), nil
}
