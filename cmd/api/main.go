package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/bootstrap"
	"storefront/internal/config"
	"storefront/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//設定（DBとJWT_SECRETがなければここで止める）
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	//Server起動
	addr := ":" + cfg.Port
	if len(cfg.Port) > 0 && cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	e := server.New(app.Handlers(), logger)
	return server.Start(ctx, e, addr, logger)
}
