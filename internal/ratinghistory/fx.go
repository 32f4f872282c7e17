package ratinghistory

import (
	"github.com/smallbiznis/streetsignal/internal/ratinghistory/repository"
	"github.com/smallbiznis/streetsignal/internal/ratinghistory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratinghistory.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
