package main

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/settleline/internal/clock"
	"github.com/smallbiznis/settleline/internal/config"
	"github.com/smallbiznis/settleline/internal/engine"
	engineservice "github.com/smallbiznis/settleline/internal/engine/service"
	"github.com/smallbiznis/settleline/internal/export"
	"github.com/smallbiznis/settleline/internal/ingest"
	"github.com/smallbiznis/settleline/internal/invoice"
	"github.com/smallbiznis/settleline/internal/journal"
	"github.com/smallbiznis/settleline/internal/recon"
	"github.com/smallbiznis/settleline/pkg/db"
	"github.com/smallbiznis/settleline/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	exitCode := 0
	app := fx.New(
		// Core Infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		ingest.Module,
		journal.Module,
		invoice.Module,
		recon.Module,
		export.Module,
		engine.Module,

		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, e *engineservice.Engine, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if _, err := e.Execute(context.Background()); err != nil {
							logger.Error("run failed", zap.Error(err))
							exitCode = 1
						}
						_ = sd.Shutdown()
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
	os.Exit(exitCode)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
