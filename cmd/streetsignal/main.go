package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streetsignal/internal/ambience"
	"github.com/smallbiznis/streetsignal/internal/catalog"
	"github.com/smallbiznis/streetsignal/internal/clock"
	"github.com/smallbiznis/streetsignal/internal/config"
	"github.com/smallbiznis/streetsignal/internal/engine"
	"github.com/smallbiznis/streetsignal/internal/geocode"
	"github.com/smallbiznis/streetsignal/internal/location"
	"github.com/smallbiznis/streetsignal/internal/migration"
	"github.com/smallbiznis/streetsignal/internal/observability"
	"github.com/smallbiznis/streetsignal/internal/ratinghistory"
	"github.com/smallbiznis/streetsignal/internal/reward"
	"github.com/smallbiznis/streetsignal/internal/scheduler"
	"github.com/smallbiznis/streetsignal/internal/server"
	"github.com/smallbiznis/streetsignal/internal/signal"
	"github.com/smallbiznis/streetsignal/internal/store"
	"github.com/smallbiznis/streetsignal/internal/venue"
	"github.com/smallbiznis/streetsignal/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		store.Module,

		// Venue state
		catalog.Module,
		geocode.Module,
		location.Module,
		venue.Module,
		signal.Module,
		ambience.Module,
		reward.Module,
		ratinghistory.Module,
		engine.Module,
		scheduler.Module,

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
