package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/api"
	"github.com/mkravets/flightdesk/config"
	"github.com/mkravets/flightdesk/internal/logger"
	"github.com/mkravets/flightdesk/internal/metrics"
	"github.com/mkravets/flightdesk/internal/service/auth"
	"github.com/mkravets/flightdesk/internal/service/booking"
	"github.com/mkravets/flightdesk/internal/service/search"
)

// Run starts the HTTP server and blocks until ctx is canceled or the server
// fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	m *metrics.Metrics,
	sessions api.SessionStore,
	authSvc auth.AuthUseCase,
	searchSvc search.SearchUseCase,
	bookingSvc booking.BookingUseCase,
) error {
	router := newRouter(cfg, m, sessions, authSvc, searchSvc, bookingSvc)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	sessions api.SessionStore,
	authSvc auth.AuthUseCase,
	searchSvc search.SearchUseCase,
	bookingSvc booking.BookingUseCase,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if m != nil {
		router.Use(metrics.Middleware(m))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/")
	api.NewUserHandler(authSvc, sessions).Register(v1)
	api.NewSearchHandler(searchSvc, sessions, cfg.Search.Count()).Register(v1)
	api.NewReservationHandler(bookingSvc).Register(v1)

	return router
}
