package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	e *echo.Echo
}

// StartMetricsServer serves /metrics on port in the background.
func StartMetricsServer(port string, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		logger.Infof("Metrics server listening on :%s", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Metrics server stopped: %v", err)
		}
	}()
	return &Server{e: e}
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
