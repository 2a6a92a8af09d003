package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/IRT-SystemX/bcm-notifier/internal/account"
	"github.com/IRT-SystemX/bcm-notifier/internal/horoscope"
	"github.com/IRT-SystemX/bcm-notifier/internal/notice"
	"github.com/IRT-SystemX/bcm-notifier/notifier"
)

// DefaultTestInterval is the minimum delay between two test notifications.
var DefaultTestInterval = 2 * time.Second

type Option func(*HTTP)

// WithBroadcast enables the broadcast variant of the echo endpoint.
func WithBroadcast(sink notifier.Sink, subscribers []notifier.Recipient, payload notifier.Payload) Option {
	return func(h *HTTP) {
		h.broadcast = sink
		h.subscribers = subscribers
		h.broadcastPayload = payload
	}
}

func WithTestLimiter(limiter *rate.Limiter) Option {
	return func(h *HTTP) {
		h.limiter = limiter
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *HTTP) {
		h.logger = logger
	}
}

type HTTP struct {
	engine  *notifier.Engine
	session *account.Session
	book    *horoscope.Book
	notices *notice.Board
	limiter *rate.Limiter
	logger  zerolog.Logger

	broadcast        notifier.Sink
	subscribers      []notifier.Recipient
	broadcastPayload notifier.Payload
}

func New(engine *notifier.Engine, session *account.Session, book *horoscope.Book, notices *notice.Board, opts ...Option) *HTTP {
	h := &HTTP{
		engine:  engine,
		session: session,
		book:    book,
		notices: notices,
		limiter: rate.NewLimiter(rate.Every(DefaultTestInterval), 1),
		logger:  log.Logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) Register(e *echo.Echo) {
	e.Any("/api/serverless-example", h.Echo)
	e.Any("/api/serverless-example/broadcast", h.Broadcast)

	e.GET("/api/horoscope", h.Signs)
	e.GET("/api/horoscope/:sign", h.Horoscope)

	e.GET("/api/account", h.Account)
	e.POST("/api/account", h.Connect)
	e.DELETE("/api/account", h.Disconnect)

	e.POST("/api/subscription", h.Subscribe)
	e.DELETE("/api/subscription", h.Unsubscribe)

	e.POST("/api/notifications/test", h.SendTest)
	e.POST("/api/notifications/block/toggle", h.ToggleBlock)

	e.GET("/api/notices", h.Notices)
}

type errorResponse struct {
	Status int    `json:"status"`
	Err    string `json:"error"`
}

func sendError(c echo.Context, status int, err error) error {
	return c.JSON(status, &errorResponse{Status: status, Err: err.Error()})
}

// detached keeps the request values but survives the end of the request, so
// a handler can finish a call the client stopped waiting for.
func detached(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func ok(c echo.Context, value interface{}) error {
	return c.JSON(http.StatusOK, value)
}
