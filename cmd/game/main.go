package main

import (
	"updown/config"
	"updown/internal/api"
	"updown/internal/game"
	"updown/logger"
	"updown/pkg/storage"
	"updown/pkg/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// storage: postgres when enabled, in-memory otherwise
	var store storage.Store = storage.NewMemoryStore()
	if cfg.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			log.Fatal("postgres initialization failed", zap.Error(err))
		}
		defer client.Close()
		store = postgres.NewGameStore(client)
		log.Info("postgres storage enabled", zap.String("dbname", cfg.Postgres.DBName))
	}

	// game session
	session := game.NewSession(cfg, log, store, game.NopNotifier{})
	session.Start()
	defer session.Teardown()

	// http api
	server := api.NewServer(cfg.API.Addr, session, log)
	if err := server.Run(); err != nil {
		log.Fatal("api server failed", zap.Error(err))
	}
}
