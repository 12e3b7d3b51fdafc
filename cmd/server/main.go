package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/auth"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/config"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/logging"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/server"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML/JSON config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // best-effort flush

	st, err := store.OpenBolt(cfg.Store.Path)
	if err != nil {
		logger.Fatal("open document store", zap.Error(err))
	}
	defer st.Close()
	logger.Info("document store opened", zap.String("path", cfg.Store.Path))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.NewInMemory()
	srv := server.NewServer(cfg, logger, st, reg, auth.NewVerifier())

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}
