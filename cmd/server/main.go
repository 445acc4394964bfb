package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fujao/internal/config"
	"fujao/internal/database"
	"fujao/internal/processing"
	"fujao/internal/queue"
	"fujao/internal/repository"
	"fujao/internal/s3storage"
	"fujao/internal/server"
	"fujao/internal/storage"
	"fujao/internal/worker"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users   server.UserStore
		animals server.AnimalStore
		found   server.FoundStore
		images  worker.AnimalStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("ensure schema")
		}
		animalRepo := repository.NewAnimalRepository(pool)
		users = repository.NewUserRepository(pool)
		animals = animalRepo
		found = repository.NewFoundAnimalRepository(pool)
		images = animalRepo
		log.Info().Msg("using postgres storage")
	} else {
		mem := storage.NewMemoryStore()
		users, animals, found, images = mem, mem, mem, mem
		log.Info().Msg("no DATABASE_URL set, using in-memory storage")
	}

	var (
		objects worker.ObjectStore
		photos  server.PhotoSigner
	)
	if cfg.S3Endpoint != "" {
		store, err := s3storage.New(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init object storage")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure bucket")
		}
		objects = store
		photos = store
	}

	// Photo archival goes through Redis when configured; otherwise an
	// in-process pool keeps the dev loop dependency-free.
	var archiver server.Archiver
	if cfg.RedisAddr != "" {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		archiver = &queue.Enqueuer{Client: client, Log: log.Logger}
		log.Info().Str("redis", cfg.RedisAddr).Msg("photo archival via worker queue")
	} else {
		pool := processing.New(worker.NewArchiver(images, objects, log.Logger), cfg.WorkerCount, log.Logger)
		pool.Start(ctx)
		archiver = pool
		log.Info().Int("workers", cfg.WorkerCount).Msg("photo archival in-process")
	}

	srv := server.New(cfg.Address, users, animals, found, archiver, photos, log.Logger)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
