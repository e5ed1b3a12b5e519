package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/config"
	"github.com/sceneworks/scene/internal/migration"
	"github.com/sceneworks/scene/internal/observability"
	"github.com/sceneworks/scene/internal/server"
	"github.com/sceneworks/scene/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
