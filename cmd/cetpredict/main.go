package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/flexiworks/cetpredict/internal/config"
	"github.com/flexiworks/cetpredict/internal/cutoff"
	"github.com/flexiworks/cetpredict/internal/export"
	"github.com/flexiworks/cetpredict/internal/observability"
	"github.com/flexiworks/cetpredict/internal/payment"
	"github.com/flexiworks/cetpredict/internal/server"
	"github.com/flexiworks/cetpredict/internal/unlock"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),

		// Functional domains
		cutoff.Module,
		payment.Module,
		unlock.Module,
		export.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
