package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Spot     float64 `json:"spot" validate:"gt=0"`
	Kind     string  `json:"option_type" default:"call" validate:"oneof=call put"`
	Expiry   string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Currency string  `json:"currency" default:"EUR" validate:"len=3,alpha"`
}

func bind(t *testing.T, body string, dst interface{}) interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return ReadAndValidateRequest(e.NewContext(req, httptest.NewRecorder()), dst)
}

func TestReadAndValidateRequest_Defaults(t *testing.T) {
	var req sampleRequest
	errs := bind(t, `{"spot": 1.1, "expiry_date": "2025-12-31"}`, &req)
	require.Nil(t, errs)
	assert.Equal(t, "call", req.Kind)
	assert.Equal(t, "EUR", req.Currency)
}

func TestReadAndValidateRequest_FieldErrors(t *testing.T) {
	var req sampleRequest
	errs := bind(t, `{"spot": 0, "option_type": "straddle", "expiry_date": "31/12/2025", "currency": "EURO"}`, &req)

	verrs, ok := errs.([]ValidationError)
	require.True(t, ok)
	byField := map[string]ValidationError{}
	for _, v := range verrs {
		byField[v.Field] = v
	}
	assert.Equal(t, "ERR_GT", byField["spot"].Code)
	assert.Equal(t, "ERR_ONEOF", byField["option_type"].Code)
	assert.Equal(t, "ERR_DATETIME", byField["expiry_date"].Code)
	assert.Equal(t, "ERR_LEN", byField["currency"].Code)
}

func TestReadAndValidateRequest_MalformedBody(t *testing.T) {
	var req sampleRequest
	errs := bind(t, `{"spot": "abc"`, &req)
	verrs, ok := errs.([]ValidationError)
	require.True(t, ok)
	assert.Equal(t, "ERR_UNKNOWN", verrs[0].Code)
}
