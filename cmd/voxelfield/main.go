package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelfield/internal/config"
	"voxelfield/internal/engine"
	"voxelfield/internal/feed"
	"voxelfield/internal/world"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to terrain engine configuration file")
	flag.Parse()

	if synced, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("sync config from environment: %v", err)
	} else if synced {
		log.Printf("configuration written from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := setupStorage(cfg); err != nil {
		log.Fatalf("initialise storage: %v", err)
	}

	eng := engine.New(cfg)
	srv := feed.NewServer(eng)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx, cfg.Feed.Listen); err != nil {
			log.Printf("feed server exited with error: %v", err)
			cancel()
		}
	}()

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("engine exited with error: %v", err)
	}
}

func setupStorage(cfg *config.Config) error {
	switch cfg.Storage.Backend {
	case "", "memory":
		world.SetStorageProvider(world.NewMemoryStorageProvider())
	case "disk":
		world.SetStorageProvider(world.NewDiskStorageProvider(cfg.Storage.Path))
	case "sqlite":
		provider, err := world.NewSQLiteStorageProvider(cfg.Storage.Path)
		if err != nil {
			return err
		}
		world.SetStorageProvider(provider)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
