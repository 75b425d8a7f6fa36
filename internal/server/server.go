package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/flexiworks/cetpredict/internal/config"
	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
	"github.com/flexiworks/cetpredict/internal/export"
	"github.com/flexiworks/cetpredict/internal/observability"
	obslogger "github.com/flexiworks/cetpredict/internal/observability/logger"
	obsmetrics "github.com/flexiworks/cetpredict/internal/observability/metrics"
	paymentdomain "github.com/flexiworks/cetpredict/internal/payment/domain"
	unlockdomain "github.com/flexiworks/cetpredict/internal/unlock/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log.Named("http"),
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	cutoffSvc    cutoffdomain.Service
	paymentSvc   paymentdomain.Service
	unlockSvc    unlockdomain.Service
	exports      export.Provider
	obsMetrics   *obsmetrics.Metrics
	orderLimiter *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	CutoffSvc  cutoffdomain.Service
	PaymentSvc paymentdomain.Service
	UnlockSvc  unlockdomain.Service
	Exports    export.Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		cutoffSvc:    p.CutoffSvc,
		paymentSvc:   p.PaymentSvc,
		unlockSvc:    p.UnlockSvc,
		exports:      p.Exports,
		obsMetrics:   p.ObsMetrics,
		orderLimiter: newRateLimiter(5, time.Minute),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/options", s.ListOptions)
	api.POST("/predict", s.PredictEligibleCount)

	// -------- Payments --------
	api.POST("/create-order", s.OrderCreateRateLimit(), s.CreateOrder)
	api.GET("/payment-status", s.PaymentStatus)
	api.POST("/webhook/razorpay", s.HandlePaymentWebhook)

	// -------- Unlock + exports --------
	api.POST("/unlock", s.UnlockEligible)
	api.POST("/export/csv", s.ExportCSV)
	api.POST("/export/pdf", s.ExportPDF)
}

func (s *Server) OrderCreateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.orderLimiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
