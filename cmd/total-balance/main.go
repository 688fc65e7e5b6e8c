// Command total-balance fills the 5-minute fiat totals of all wallets.
// Run it on a schedule; buckets that already have a total are left untouched.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/walletbalance/config"
	"github.com/vadiminshakov/walletbalance/internal/app"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.EnvSecrets{})
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := app.RunAggregator(ctx, cfg, logger); err != nil {
		logger.Fatal("total balance job failed", zap.Error(err))
	}
}
