package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/settleline/internal/config"
	"github.com/smallbiznis/settleline/internal/server"
	"github.com/smallbiznis/settleline/pkg/db"
	"github.com/smallbiznis/settleline/pkg/log"
	"go.uber.org/fx"
)

// The review app serves the read-only reconciliation API over output
// persisted by earlier engine runs. It runs no batch work itself.
func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
