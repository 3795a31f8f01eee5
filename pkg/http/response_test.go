package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, err))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestAppErrorResponse(t *testing.T) {
	appErr := NewAppError("ERR_INVALID_INPUT", "spot", "spot must be positive", http.StatusBadRequest).
		WithParam("min", 0)
	code, body := respond(t, appErr)
	assert.Equal(t, http.StatusBadRequest, code)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	detail := data[0].(map[string]interface{})
	assert.Equal(t, "ERR_INVALID_INPUT", detail["code"])
	assert.Equal(t, "spot", detail["field"])
}

func TestAppErrorResponse_PlainErrorIsInternal(t *testing.T) {
	code, body := respond(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.EqualValues(t, http.StatusInternalServerError, body["status"])
	assert.Equal(t, "Something went wrong", body["data"])
}
