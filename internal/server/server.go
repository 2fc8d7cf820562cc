package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/settleline/internal/config"
	enginedomain "github.com/smallbiznis/settleline/internal/engine/domain"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func registerGin() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
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

// Server exposes read-only review endpoints over persisted run output.
// Posting decisions stay with the reviewer; nothing here mutates state.
type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	log    *zap.Logger
}

type ServerParam struct {
	fx.In

	Engine *gin.Engine
	DB     *gorm.DB
	Log    *zap.Logger
}

func NewServer(p ServerParam) *Server {
	s := &Server{
		engine: p.Engine,
		db:     p.DB,
		log:    p.Log.Named("server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.GET("/runs", s.listRuns)
	v1.GET("/runs/:run_id/settlements", s.listRunSettlements)
	v1.GET("/runs/:run_id/settlements/:settlement_id/journal", s.listJournalLines)
	v1.GET("/runs/:run_id/settlements/:settlement_id/invoices", s.listInvoiceLines)
	v1.GET("/runs/:run_id/settlements/:settlement_id/payments", s.listPayments)
}

func (s *Server) listRuns(c *gin.Context) {
	var runs []enginedomain.Run
	if err := s.db.WithContext(c.Request.Context()).
		Order("id DESC").
		Limit(100).
		Find(&runs).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) listRunSettlements(c *gin.Context) {
	var facts []recondomain.SettlementFact
	if err := s.db.WithContext(c.Request.Context()).
		Where("run_id = ?", c.Param("run_id")).
		Order("settlement_id ASC").
		Find(&facts).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": facts})
}

func (s *Server) listJournalLines(c *gin.Context) {
	var lines []journaldomain.Line
	if err := s.settlementScope(c).Order("sequence_number ASC").Find(&lines).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (s *Server) listInvoiceLines(c *gin.Context) {
	var lines []invoicedomain.Line
	if err := s.settlementScope(c).Order("sequence_number ASC").Find(&lines).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (s *Server) listPayments(c *gin.Context) {
	var payments []invoicedomain.Payment
	if err := s.settlementScope(c).Order("invoice_number ASC").Find(&payments).Error; err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (s *Server) settlementScope(c *gin.Context) *gorm.DB {
	return s.db.WithContext(c.Request.Context()).
		Where("run_id = ? AND settlement_id = ?", c.Param("run_id"), c.Param("settlement_id"))
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("review query failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
