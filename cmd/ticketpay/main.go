package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/eventick/ticketpay/internal/clock"
	"github.com/eventick/ticketpay/internal/config"
	"github.com/eventick/ticketpay/internal/logger"
	"github.com/eventick/ticketpay/internal/migration"
	"github.com/eventick/ticketpay/internal/server"
	"github.com/eventick/ticketpay/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
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
