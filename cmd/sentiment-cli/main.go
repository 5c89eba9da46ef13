package main

import (
	"os"

	"github.com/spacesedan/sentiserve/config"
	"github.com/spacesedan/sentiserve/internal/logging"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel, cfg.IsDev())

	if err := NewRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
