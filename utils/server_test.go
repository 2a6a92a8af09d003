package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerBind(t *testing.T) {
	calls := 0
	server := NewServer("0")
	server.Bind(map[string]interface{}{
		"static": map[string]int{"count": 3},
		"live": func() interface{} {
			calls++
			return map[string]int{"calls": calls}
		},
	})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())

	for i := 1; i <= 2; i++ {
		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		assert.JSONEq(t, `{"calls":`+IntToString(int64(i))+`}`, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/static", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
