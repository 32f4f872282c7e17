package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ambiencedomain "github.com/smallbiznis/streetsignal/internal/ambience/domain"
	"github.com/smallbiznis/streetsignal/internal/config"
	enginedomain "github.com/smallbiznis/streetsignal/internal/engine/domain"
	"github.com/smallbiznis/streetsignal/internal/observability"
	obsmiddleware "github.com/smallbiznis/streetsignal/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streetsignal/internal/observability/metrics"
	obstracing "github.com/smallbiznis/streetsignal/internal/observability/tracing"
	ratinghistorydomain "github.com/smallbiznis/streetsignal/internal/ratinghistory/domain"
	rewarddomain "github.com/smallbiznis/streetsignal/internal/reward/domain"
	signaldomain "github.com/smallbiznis/streetsignal/internal/signal/domain"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	router      *gin.Engine
	engine      enginedomain.Service
	registry    venuedomain.Registry
	signalSvc   signaldomain.Service
	ambienceSvc ambiencedomain.Service
	rewardSvc   rewarddomain.Service
	ratingSvc   ratinghistorydomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Engine      enginedomain.Service
	Registry    venuedomain.Registry
	SignalSvc   signaldomain.Service
	AmbienceSvc ambiencedomain.Service
	RewardSvc   rewarddomain.Service
	RatingSvc   ratinghistorydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		router:      p.Gin,
		engine:      p.Engine,
		registry:    p.Registry,
		signalSvc:   p.SignalSvc,
		ambienceSvc: p.AmbienceSvc,
		rewardSvc:   p.RewardSvc,
		ratingSvc:   p.RatingSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.router
}

func (s *Server) registerAPIRoutes() {
	api := s.router.Group("/api")

	api.GET("/state", s.GetState)
	api.POST("/location", s.UpdateLocation)

	venues := api.Group("/venues")
	{
		venues.GET("", s.ListVenues)
		venues.GET("/:id", s.GetVenue)
		venues.POST("/:id/favorite", s.ToggleFavorite)
		venues.POST("/:id/signals", s.SendSignal)
		venues.DELETE("/:id/signals", s.LeaveVenue)
		venues.POST("/:id/ambience", s.RecordAmbience)
		venues.POST("/:id/reports", s.ReportIssue)
	}

	api.GET("/rewards", s.GetRewards)
	api.GET("/rewards/offers", s.ListOffers)
	api.POST("/rewards/offers/:id/redeem", s.RedeemOffer)

	api.GET("/rating-history", s.GetRatingHistory)
	api.POST("/matches", s.RecordMatch)

	api.GET("/profile", s.GetProfile)
	api.POST("/profile/flags/:flag", s.SetProfileFlag)
	api.POST("/demo/reset", s.ResetDemoData)
}

func (s *Server) registerFallback() {
	s.router.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
