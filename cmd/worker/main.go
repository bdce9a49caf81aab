package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/annotations/repository"
	"github.com/clipscribe/video-annotator/internal/capability"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/internal/worker"
	"github.com/clipscribe/video-annotator/pkg/db/aws"
	"github.com/clipscribe/video-annotator/pkg/db/postgres"
	clientRedis "github.com/clipscribe/video-annotator/pkg/db/redis"
	"github.com/clipscribe/video-annotator/pkg/logger"
)

func main() {
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

	var mediaStore annotations.MediaStore
	if cfg.S3.Enabled {
		s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %s", err)
		}
		mediaStore = repository.NewAwsRepository(s3Client)
		appLogger.Infof("s3 connected")
	}

	jobStore := repository.NewJobRedisStore(redisClient, cfg)
	recordRepo := repository.NewAnnotationRepo(psqlDB)
	transcriber := capability.NewWhisperTranscriber(cfg)
	captioner := capability.NewVisionCaptioner(cfg)

	orchestrator := worker.NewOrchestrator(cfg, jobStore, recordRepo, mediaStore, transcriber, captioner, appLogger)
	w := worker.NewWorker(cfg, jobStore, orchestrator, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	w.Start(ctx)
	<-sigChan
	appLogger.Infof("shutting down workers")
	w.Stop()
}
