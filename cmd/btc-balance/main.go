// Command btc-balance sums the balance of a Bitcoin HD wallet and records it.
//
// It derives native SegWit receive addresses from the extended public key in
// BTC_XPUB, queries each one until the gap limit is reached and stores the
// total priced in fiat. Settings are read from the YAML file named by
// WALLETBALANCE_CONFIG.
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

	if err := app.RunAddressScanner(ctx, cfg, logger); err != nil {
		logger.Fatal("btc balance job failed", zap.Error(err))
	}
}
