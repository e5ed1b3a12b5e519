package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sceneworks/scene/internal/analytics"
	analyticsdomain "github.com/sceneworks/scene/internal/analytics/domain"
	analyticsrollup "github.com/sceneworks/scene/internal/analytics/rollup"
	"github.com/sceneworks/scene/internal/checkin"
	checkindomain "github.com/sceneworks/scene/internal/checkin/domain"
	"github.com/sceneworks/scene/internal/clock"
	"github.com/sceneworks/scene/internal/config"
	"github.com/sceneworks/scene/internal/events"
	"github.com/sceneworks/scene/internal/observability"
	obsmiddleware "github.com/sceneworks/scene/internal/observability/logger"
	obsmetrics "github.com/sceneworks/scene/internal/observability/metrics"
	obstracing "github.com/sceneworks/scene/internal/observability/tracing"
	"github.com/sceneworks/scene/internal/occupancy"
	"github.com/sceneworks/scene/internal/photo"
	photodomain "github.com/sceneworks/scene/internal/photo/domain"
	"github.com/sceneworks/scene/internal/promotion"
	promotiondomain "github.com/sceneworks/scene/internal/promotion/domain"
	"github.com/sceneworks/scene/internal/ratelimit"
	"github.com/sceneworks/scene/internal/topics"
	"github.com/sceneworks/scene/internal/venue"
	venuedomain "github.com/sceneworks/scene/internal/venue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	topics.Module,
	events.Module,
	occupancy.Module,
	ratelimit.Module,
	venue.Module,
	checkin.Module,
	promotion.Module,
	photo.Module,
	analytics.Module,
	analyticsrollup.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	venueSvc       venuedomain.Service
	checkinSvc     checkindomain.Service
	promotionSvc   promotiondomain.Service
	photoSvc       photodomain.Service
	analyticsSvc   analyticsdomain.Service
	clock          clock.Clock
	hub            *topics.Hub
	checkinLimiter *ratelimit.CheckinLimiter
	metrics        *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	VenueSvc       venuedomain.Service
	CheckinSvc     checkindomain.Service
	PromotionSvc   promotiondomain.Service
	PhotoSvc       photodomain.Service
	AnalyticsSvc   analyticsdomain.Service
	Clock          clock.Clock
	Hub            *topics.Hub
	CheckinLimiter *ratelimit.CheckinLimiter `optional:"true"`
	Metrics        *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		genID:          p.GenID,
		venueSvc:       p.VenueSvc,
		checkinSvc:     p.CheckinSvc,
		promotionSvc:   p.PromotionSvc,
		photoSvc:       p.PhotoSvc,
		analyticsSvc:   p.AnalyticsSvc,
		clock:          p.Clock,
		hub:            p.Hub,
		checkinLimiter: p.CheckinLimiter,
		metrics:        p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(IdentityMiddleware())

	// -------- Venues --------
	api.GET("/venues", s.ListVenues)
	api.POST("/venues", s.CreateVenue)
	api.GET("/venues/nearby", s.NearbyVenues)
	api.GET("/venues/slug/:slug", s.GetVenueBySlug)
	api.GET("/venues/:id", s.GetVenueByID)
	api.PATCH("/venues/:id", s.UpdateVenue)
	api.GET("/venues/:id/checkins", s.VenueCheckinHistory)

	// -------- Check-ins --------
	api.POST("/checkins", s.CheckinRateLimitMiddleware(), s.CheckIn)
	api.POST("/checkins/:id/checkout", s.CheckOut)
	api.GET("/checkins/current", s.CurrentCheckins)

	// -------- Promotions --------
	api.POST("/promotions", s.CreatePromotion)
	api.PATCH("/promotions/:id", s.UpdatePromotion)
	api.POST("/promotions/:id/redeem", s.RedeemPromotion)
	api.GET("/venues/:id/promotions", s.ListVenuePromotions)

	// -------- Photos --------
	api.POST("/photos", s.AddPhoto)
	api.GET("/venues/:id/photos", s.ListVenuePhotos)

	// -------- Analytics --------
	api.GET("/venues/:id/analytics", s.GetVenueAnalytics)
	api.GET("/venues/:id/analytics/daily", s.VenueDailyHistory)
	api.POST("/venues/:id/analytics/rollup", s.RollupVenueAnalytics)

	// -------- Live event streams --------
	api.GET("/venues/:id/events", s.StreamVenueEvents)
	api.GET("/venues/:id/analytics/events", s.StreamVenueAnalyticsEvents)
	api.GET("/me/events", s.StreamUserEvents)
}
