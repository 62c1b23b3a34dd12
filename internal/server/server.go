package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/observability"
	obsmiddleware "github.com/smallbiznis/rythudepot/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rythudepot/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rythudepot/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, obsMetrics *obsmetrics.Metrics) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(classifyErrorForLog))
	r.Use(obsmetrics.GinMiddleware(obsMetrics))
	r.Use(ErrorHandlingMiddleware())
	r.Use(RequireJSON())
	r.NoRoute(noRoute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// useJSONFieldNames makes binding errors report fields by their JSON names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

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
	engine *gin.Engine
	ledger domain.Service
}

type ServerParams struct {
	fx.In

	Gin    *gin.Engine
	Ledger domain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		ledger: p.Ledger,
	}
	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/farmers", s.ListFarmers)
	api.POST("/farmers", s.CreateFarmer)
	api.GET("/farmers/:id", s.GetFarmer)
	api.PATCH("/farmers/:id", s.UpdateFarmer)
	api.DELETE("/farmers/:id", s.DeleteFarmer)
	api.GET("/farmers/:id/dues", s.GetFarmerDues)

	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/low-stock", s.ListLowStock)
	api.GET("/products/:id", s.GetProduct)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)
	api.POST("/products/:id/stock", s.AdjustProductStock)

	api.GET("/bills", s.ListBills)
	api.POST("/bills", s.CreateBill)
	api.GET("/bills/today", s.ListTodaysSales)
	api.GET("/bills/month", s.ListMonthlySales)
	api.GET("/bills/outstanding", s.ListOutstandingBills)
	api.GET("/bills/number/:billNo", s.GetBillByNumber)
	api.GET("/bills/:id", s.GetBill)
	api.PATCH("/bills/:id", s.UpdateBill)
	api.DELETE("/bills/:id", s.DeleteBill)
	api.GET("/bills/:id/payments", s.ListBillPayments)
	api.POST("/bills/:id/payments", s.PostPayment)

	api.GET("/payments", s.ListPaymentRecords)
	api.POST("/payments", s.CreatePaymentRecord)

	api.GET("/returns", s.ListReturns)
	api.POST("/returns", s.CreateReturn)
	api.DELETE("/returns/:id", s.DeleteReturn)

	api.GET("/stock-register", s.ListStockRegister)
	api.POST("/stock-register", s.CreateStockRegisterEntry)
	api.PATCH("/stock-register/:id", s.UpdateStockRegisterEntry)
	api.DELETE("/stock-register/:id", s.DeleteStockRegisterEntry)

	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", s.UpdateSettings)

	api.GET("/summary", s.GetSummary)
	api.GET("/dues", s.ListDues)

	api.POST("/undo", s.Undo)
}
