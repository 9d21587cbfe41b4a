package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/config"
	"github.com/hongminglow/taskboard-be/internal/logging"
	"github.com/hongminglow/taskboard-be/internal/server"
	"github.com/hongminglow/taskboard-be/internal/storage"
	"github.com/hongminglow/taskboard-be/internal/storage/memory"
	"github.com/hongminglow/taskboard-be/internal/storage/postgres"
)

type store interface {
	storage.UserStore
	storage.TaskStore
	Close()
}

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger.Desugar())

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("init storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer st.Close()

	srv := server.New(cfg, st, st, logger)

	go func() {
		logger.Infow("taskboard backend listening", "addr", cfg.HTTPAddress(), "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("http server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorw("graceful shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		logger.Warnw("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil
	}
	return postgres.NewStore(ctx, logger, cfg.DatabaseURL)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
