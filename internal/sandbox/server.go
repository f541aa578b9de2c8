package sandbox

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/rshade/wardboard/internal/logging"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// NewServer builds an echo instance serving db under /api.
func NewServer(db *DB, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str(logging.TraceIDField, v.RequestID).
				Msg("sandbox request")
			return nil
		},
	}))

	NewHandler(db).RegisterRoutes(e.Group("/api"))
	return e
}

// errorHandler renders framework errors the way the backend does.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	msg := msgInternal
	switch code {
	case http.StatusNotFound:
		msg = msgNotFoundURL
	case http.StatusBadRequest:
		msg = msgBadRequest
	case http.StatusMethodNotAllowed:
		msg = http.StatusText(code)
	}
	_ = c.JSON(code, errorBody(msg))
}

// Serve runs e on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, ln net.Listener) error {
	e.Listener = ln

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
