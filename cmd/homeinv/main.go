package main

import (
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vbonduro/homeinv/internal/config"
	"github.com/vbonduro/homeinv/internal/db"
	"github.com/vbonduro/homeinv/internal/imagestore/local"
	"github.com/vbonduro/homeinv/internal/logging"
	"github.com/vbonduro/homeinv/internal/metrics"
	"github.com/vbonduro/homeinv/internal/service"
	"github.com/vbonduro/homeinv/internal/store"
	"github.com/vbonduro/homeinv/internal/web"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	locationStore := store.NewLocationStore(database)
	regionStore := store.NewRegionStore(database)
	itemStore := store.NewItemStore(database)
	tagStore := store.NewTagStore(database)

	imgStore, err := local.NewLocalImageStore(cfg.UploadPath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	locationService := service.NewLocationService(locationStore, regionStore, itemStore, imgStore, logger)
	inventoryService := service.NewInventoryService(itemStore, tagStore, locationStore, regionStore, imgStore, logger)

	m := metrics.New()
	registry := prometheus.NewRegistry()
	if err := m.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		return
	}

	server := web.NewServer(locationService, inventoryService, imgStore, m, registry, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
