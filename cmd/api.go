package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gardenrating/infra"
	_middleware "gardenrating/infra/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newAPICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the rating API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.container.BuildAPI(ctx); err != nil {
				return err
			}
			defer func() {
				if err := a.container.Close(); err != nil {
					a.logger.Warn("closing storage", zap.Error(err))
				}
			}()
			return StartAPI(ctx, a.container)
		},
	}
}

// NewRouter registers every route on a fresh echo instance. BuildAPI must
// have run on container.
func NewRouter(container *infra.ContainerDI) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: middleware.DefaultCORSConfig.AllowMethods,
	}))
	e.Use(_middleware.RequestLogger(container.Logger.Named("http")))
	e.Use(middleware.Recover())

	auth := _middleware.CheckBearerToken(container.Config.RateAPIToken)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", container.HandlerRating.HealthHandler)
	e.POST("/rate", container.HandlerRating.RateHandler, auth)
	e.GET("/ratings/:record_id", container.HandlerRating.GetRatingsHandler)
	e.GET("/ws/ratings", container.WsHandler.HandleWs)

	if container.HandlerTrigger != nil {
		e.POST("/webhooks/record-created", container.HandlerTrigger.RecordCreatedHandler, auth)
	}

	return e
}

// StartAPI serves until ctx is cancelled, then drains in-flight requests.
func StartAPI(ctx context.Context, container *infra.ContainerDI) error {
	e := NewRouter(container)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go container.Hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("api listening", zap.String("addr", container.Config.ServerPort))
		if err := e.Start(container.Config.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	container.Logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
