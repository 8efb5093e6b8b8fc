package main

import (
	"os"

	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/server"
	"clipforge/internal/storage"
	"clipforge/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}
	if created {
		log.GetLogger().Info("default config written, edit it to configure collaborators")
	}

	storage.InitDB()

	// Jobs left pending or processing by a previous run can never finish.
	if count, err := storage.MarkStaleJobs(); err != nil {
		log.GetLogger().Warn("failed to mark stale jobs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale jobs as failed", zap.Int64("count", count))
	}

	if err := server.StartBackend(); err != nil {
		log.GetLogger().Error("backend failed", zap.Error(err))
		os.Exit(1)
	}
}
