package api

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type echoResponse struct {
	Body    interface{}            `json:"body"`
	Query   map[string]interface{} `json:"query"`
	Cookies map[string]string      `json:"cookies"`
}

// Echo answers with the request body, query and cookies.
func (h *HTTP) Echo(c echo.Context) error {
	res, err := readEcho(c)
	if err != nil {
		return err
	}
	return ok(c, res)
}

// Broadcast echoes like Echo and, when enabled, sends one notification batch
// to the configured subscribers. Delivery errors are only logged.
func (h *HTTP) Broadcast(c echo.Context) error {
	res, err := readEcho(c)
	if err != nil {
		return err
	}
	if h.broadcast != nil && len(h.subscribers) > 0 {
		if err := h.broadcast.Send(detached(c), h.subscribers, h.broadcastPayload); err != nil {
			h.logger.Error().Err(err).Int("subscribers", len(h.subscribers)).Msg("Broadcast failed")
		} else {
			h.logger.Info().Int("subscribers", len(h.subscribers)).Msg("Broadcast sent")
		}
	}
	return ok(c, res)
}

func readEcho(c echo.Context) (*echoResponse, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	res := &echoResponse{
		Body:    decodeBody(c.Request().Header.Get(echo.HeaderContentType), raw),
		Query:   flatten(c.QueryParams()),
		Cookies: make(map[string]string),
	}
	for _, cookie := range c.Cookies() {
		res.Cookies[cookie.Name] = cookie.Value
	}
	return res, nil
}

func decodeBody(contentType string, raw []byte) interface{} {
	if len(raw) == 0 {
		return ""
	}
	switch {
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		if json.Valid(raw) {
			return json.RawMessage(raw)
		}
	case strings.HasPrefix(contentType, echo.MIMEApplicationForm):
		if values, err := url.ParseQuery(string(raw)); err == nil {
			return flatten(values)
		}
	}
	return string(raw)
}

// flatten keeps single values as strings and repeated ones as lists.
func flatten(values url.Values) map[string]interface{} {
	output := make(map[string]interface{}, len(values))
	for key, list := range values {
		if len(list) == 1 {
			output[key] = list[0]
		} else {
			output[key] = list
		}
	}
	return output
}
