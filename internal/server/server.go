package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gestao/internal/auth"
	billingdomain "github.com/smallbiznis/gestao/internal/billing/domain"
	billingreportdomain "github.com/smallbiznis/gestao/internal/billingreport/domain"
	clientdomain "github.com/smallbiznis/gestao/internal/client/domain"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/config"
	goaldomain "github.com/smallbiznis/gestao/internal/goal/domain"
	leaddomain "github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/logger"
	"github.com/smallbiznis/gestao/internal/observability/metrics"
	"github.com/smallbiznis/gestao/internal/subscriptiongate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(m.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r
}

func registerGin(cfg config.Config, m *metrics.Metrics) *gin.Engine {
	return NewEngine(cfg, m)
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
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

type tokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	log              *zap.Logger
	clock            clock.Clock
	policy           *config.BillingPolicyHolder
	verifier         tokenVerifier
	gate             *subscriptiongate.Gate
	billingSvc       billingdomain.Service
	billingReportSvc billingreportdomain.Service
	clientSvc        clientdomain.Service
	leadSvc          leaddomain.Service
	goalSvc          goaldomain.Service
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	Log              *zap.Logger
	Clock            clock.Clock
	Policy           *config.BillingPolicyHolder
	Verifier         *auth.Verifier
	Gate             *subscriptiongate.Gate `optional:"true"`
	BillingSvc       billingdomain.Service
	BillingReportSvc billingreportdomain.Service
	ClientSvc        clientdomain.Service
	LeadSvc          leaddomain.Service
	GoalSvc          goaldomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		log:              p.Log.Named("http.server"),
		clock:            p.Clock,
		policy:           p.Policy,
		verifier:         p.Verifier,
		gate:             p.Gate,
		billingSvc:       p.BillingSvc,
		billingReportSvc: p.BillingReportSvc,
		clientSvc:        p.ClientSvc,
		leadSvc:          p.LeadSvc,
		goalSvc:          p.GoalSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.AuthRequired())

	// Billing reads stay open when the subscription is inactive; writes do not.
	paid := s.gate.Require()

	// -------- Billings --------
	api.GET("/billings", s.ListBillings)
	api.GET("/billings/outstanding", s.ListOutstandingBillings)
	api.GET("/billings/summary", s.SummarizeBillings)
	api.GET("/billings/recurring-clients", s.ListRecurringClients)
	api.POST("/billings/generate", paid, s.GenerateBillings)
	api.POST("/billings/:id/pay", paid, s.MarkBillingPaid)
	api.POST("/billings/:id/unpay", paid, s.MarkBillingUnpaid)
	api.POST("/billings/:id/cancel", paid, s.CancelBilling)
	api.PATCH("/billings/:id", paid, s.UpdateBillingNotes)

	// -------- Reports --------
	api.GET("/reports/dashboard", s.GetDashboard)
	api.GET("/reports/revenue", s.GetMonthlyRevenue)
	api.GET("/reports/churn", s.GetChurn)
	api.GET("/reports/mrr", s.GetPaidMRR)

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", paid, s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", paid, s.UpdateClient)
	api.DELETE("/clients/:id", paid, s.DeleteClient)

	// -------- Leads --------
	api.GET("/leads", s.ListLeads)
	api.POST("/leads", paid, s.CreateLead)
	api.GET("/leads/stages", s.GetLeadStageCounts)
	api.GET("/leads/:id", s.GetLeadByID)
	api.PATCH("/leads/:id", paid, s.UpdateLead)
	api.DELETE("/leads/:id", paid, s.DeleteLead)

	// -------- Goals --------
	api.GET("/goals", s.ListGoals)
	api.POST("/goals", paid, s.CreateGoal)
	api.POST("/goals/ensure-revenue", paid, s.EnsureRevenueGoal)
	api.PATCH("/goals/:id", paid, s.UpdateGoal)
	api.DELETE("/goals/:id", paid, s.DeleteGoal)

	if !s.cfg.IsProduction() {
		s.engine.POST("/api/test/cleanup", s.TestCleanup)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
