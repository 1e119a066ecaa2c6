package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
)

// Migration applies all pending migrations from migratePath.
func Migration(dbDSN, migratePath string) error {
	if dbDSN == "" || migratePath == "" {
		return apierrors.ErrBadRequest
	}

	m, err := migrate.New("file://"+migratePath, dbDSN)
	if err != nil {
		log.Errorf("failed to initialize migrations: %v", err)
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warnf("failed to close migration source: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("failed to close migration database: %v", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("migrations: no change")
			return nil
		}
		log.Errorf("failed to apply migrations: %v", err)
		return err
	}

	log.Info("migrations applied")
	return nil
}
