package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*echo.Echo
	addr string
}

func NewServer(port string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
	}))
	return &Server{Echo: e, addr: "0.0.0.0:" + port}
}

func resourceHandler(resource interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		value := resource
		if fn, ok := resource.(func() interface{}); ok {
			value = fn()
		}
		return c.JSONPretty(http.StatusOK, value, "\t")
	}
}

// Bind exposes every resource as GET /<key>. A func() interface{} resource is
// evaluated on each request.
func (server *Server) Bind(resource map[string]interface{}) {
	for key, value := range resource {
		server.GET("/"+key, resourceHandler(value))
	}
}

// Start serves until ctx is done or the process is interrupted, then shuts
// down gracefully.
func (server *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("Listening on %s", server.addr)
		if err := server.Echo.Start(server.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server gracefully stopped")
	return nil
}
