package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/IRT-SystemX/bcm-notifier/internal/horoscope"
	"github.com/IRT-SystemX/bcm-notifier/internal/notice"
	"github.com/IRT-SystemX/bcm-notifier/notifier"
)

type prediction struct {
	Sign       horoscope.Sign `json:"sign"`
	Prediction string         `json:"prediction"`
}

func (h *HTTP) Signs(c echo.Context) error {
	return ok(c, horoscope.Signs)
}

func (h *HTTP) Horoscope(c echo.Context) error {
	sign, text, err := h.book.Predict(c.Param("sign"))
	if err != nil {
		return sendError(c, http.StatusNotFound, err)
	}
	return ok(c, prediction{Sign: sign, Prediction: text})
}

func (h *HTTP) Account(c echo.Context) error {
	return ok(c, h.session.View())
}

type connectRequest struct {
	Address string `json:"address"`
}

func (h *HTTP) Connect(c echo.Context) error {
	req := connectRequest{}
	if err := c.Bind(&req); err != nil {
		return sendError(c, http.StatusBadRequest, err)
	}
	if _, err := h.session.Connect(detached(c), req.Address); err != nil {
		return sendError(c, http.StatusBadRequest, err)
	}
	return ok(c, h.session.View())
}

func (h *HTTP) Disconnect(c echo.Context) error {
	h.session.Disconnect()
	return ok(c, h.session.View())
}

func (h *HTTP) Subscribe(c echo.Context) error {
	if err := h.session.Subscribe(detached(c)); err != nil {
		return sendError(c, http.StatusConflict, err)
	}
	return ok(c, h.session.View())
}

func (h *HTTP) Unsubscribe(c echo.Context) error {
	if err := h.session.Unsubscribe(); err != nil {
		return sendError(c, http.StatusConflict, err)
	}
	return ok(c, h.session.View())
}

func (h *HTTP) SendTest(c echo.Context) error {
	if !h.limiter.Allow() {
		return sendError(c, http.StatusTooManyRequests, errors.New("test notification rate limited"))
	}
	err := h.engine.SendTest(detached(c))
	switch {
	case err == nil:
		h.notices.Push(notice.Info, "Test notification sent", "")
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, notifier.ErrNoRecipient), errors.Is(err, notifier.ErrNotSubscribed):
		return sendError(c, http.StatusConflict, err)
	default:
		h.notices.Push(notice.Error, "Failed to send test notification", err.Error())
		return sendError(c, http.StatusBadGateway, err)
	}
}

type toggleResponse struct {
	Enabled bool `json:"enabled"`
}

func (h *HTTP) ToggleBlock(c echo.Context) error {
	return ok(c, toggleResponse{Enabled: h.engine.State().Toggle()})
}

func (h *HTTP) Notices(c echo.Context) error {
	return ok(c, h.notices.Active())
}
