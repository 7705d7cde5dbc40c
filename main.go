package main

import (
	"context"
	"time"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/routes"
	"github.com/cppla/aiblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	// A store failure at startup is fatal
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := config.InitStore(ctx, cfg)
	cancel()
	if err != nil {
		utils.Sugar.Fatalf("store init failed driver=%s: %v", cfg.StoreDriver, err)
	}
	utils.Sugar.Infof("store ready driver=%s", cfg.StoreDriver)

	rc := utils.NewRedisClient(cfg)
	blacklist := utils.NewTokenBlacklist(rc)

	r := routes.SetupRouter(cfg, st, blacklist)

	hooks := []func(context.Context) error{st.Close}
	if rc != nil {
		hooks = append(hooks, func(context.Context) error { return rc.Close() })
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, hooks...); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
	utils.Sugar.Info("server stopped")
}
