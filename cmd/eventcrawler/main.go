package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/JakeFAU/event-crawler/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L.Error("command failed", zap.Error(err))
		_ = logging.L.Sync()
		os.Exit(1)
	}
}
