package cmd

import (
	"fmt"

	"cvsync/core/config"
	"cvsync/core/database"
	"cvsync/core/logger"
	"cvsync/core/messaging"
	"cvsync/core/storage"
	cvsync "cvsync/feature/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is what every command needs: configuration, logger and the
// Nautobot database.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &runtime{cfg: cfg, logger: l, db: db}, nil
}

// sinks builds the report sinks enabled in the configuration. The returned
// archive is nil when archiving is off. release closes the NATS connection.
func (r *runtime) sinks() (sinks []cvsync.Sink, archive *cvsync.Archive, release func()) {
	release = func() {}

	if r.cfg.Storage.Enabled {
		client, err := storage.NewClient(r.cfg.Storage)
		if err != nil {
			r.logger.Warn("Report archive disabled", zap.Error(err))
		} else {
			archive = cvsync.NewArchive(client, r.cfg.Storage, r.logger)
			sinks = append(sinks, archive)
		}
	}

	if r.cfg.Messaging.Enabled {
		pub, err := messaging.Connect(r.cfg.Messaging, r.logger)
		if err != nil {
			r.logger.Warn("Report publishing disabled", zap.Error(err))
		} else {
			sinks = append(sinks, cvsync.NewAnnouncer(pub))
			release = pub.Close
		}
	}
	return sinks, archive, release
}

func (r *runtime) service(sinks []cvsync.Sink) *cvsync.Service {
	return cvsync.NewService(
		r.cfg.Sync,
		r.cfg.CloudVision,
		r.cfg.Nautobot,
		r.db,
		cvsync.DialCloudVision(r.cfg.CloudVision, r.logger),
		r.logger,
		sinks...,
	)
}
