package main

import (
	"log"

	"github.com/clipscribe/video-annotator/internal/annotations/repository"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/internal/server"
	"github.com/clipscribe/video-annotator/pkg/db/postgres"
	clientRedis "github.com/clipscribe/video-annotator/pkg/db/redis"
	"github.com/clipscribe/video-annotator/pkg/logger"
)

func main() {
	log.Println("Starting annotation API server")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := clientRedis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	defer redisClient.Close()
	appLogger.Infof("redis connected")

	jobStore := repository.NewJobRedisStore(redisClient, cfg)

	s := server.NewServer(cfg, psqlDB, jobStore, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Errorf("could not start server: %s", err)
	}
}
