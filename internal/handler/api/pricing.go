package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	models "FXOptions/internal/domain/models"
	domsvc "FXOptions/internal/domain/service"
	"FXOptions/internal/pricing"
	"FXOptions/internal/service/metrics"
	xhttp "FXOptions/pkg/http"
	xlogger "FXOptions/pkg/logger"
	"FXOptions/pkg/util"

	"github.com/labstack/echo/v4"
)

const (
	endpointCalculate  = "calculate"
	endpointImpliedVol = "implied_vol"
	endpointMarketData = "market_data"

	percent      = 100.0
	defaultTenor = 1.0

	codeValidation      = "ERR_VALIDATION"
	codeInvalidInput    = "ERR_INVALID_INPUT"
	codeBoundsViolation = "ERR_BOUNDS_VIOLATION"
)

// PricingHandler exposes the calculator over Echo.
type PricingHandler struct {
	logger  *xlogger.Logger
	pricer  domsvc.Pricer
	market  domsvc.MarketDataResolver
	now     func() time.Time
	version string
	started time.Time
}

// HandlerOption configures a PricingHandler.
type HandlerOption func(*PricingHandler)

// WithVersion sets the version reported by /api/debug.
func WithVersion(v string) HandlerOption {
	return func(h *PricingHandler) { h.version = v }
}

// WithHandlerClock replaces time.Now.
func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *PricingHandler) { h.now = now }
}

func NewPricingHandler(logger *xlogger.Logger, pricer domsvc.Pricer, market domsvc.MarketDataResolver, opts ...HandlerOption) *PricingHandler {
	metrics.Register()
	h := &PricingHandler{
		logger:  logger,
		pricer:  pricer,
		market:  market,
		now:     time.Now,
		version: "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = xlogger.Nop()
	}
	h.started = h.now()
	return h
}

func (h *PricingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/calculate", h.Calculate)
	g.POST("/implied-vol", h.ImpliedVol)
	g.POST("/market-data", h.MarketData)
	g.GET("/debug", h.Debug)
	e.GET("/healthz", h.Health)
}

func (h *PricingHandler) Calculate(c echo.Context) error {
	defer observe(endpointCalculate, time.Now())

	req := &models.CalculateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpointCalculate, codeValidation).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	params, days, err := OptionInput{
		Spot:            req.Spot,
		Strike:          req.Strike,
		VolPct:          req.Volatility,
		RatePctDomestic: req.RateDomestic,
		RatePctForeign:  req.RateForeign,
		Notional:        req.Notional,
		OptionType:      req.OptionType,
		Valuation:       req.ValuationDate,
		Expiry:          req.ExpiryDate,
		DayCount:        req.DayCount,
	}.Parameters()
	if err != nil {
		return h.fail(c, endpointCalculate, err)
	}

	// a zero premium means no market quote to compare against
	premium := req.MarketPremium
	if premium != nil && *premium == 0 {
		premium = nil
	}

	res, err := h.pricer.ComputePricing(params, premium)
	if err != nil {
		return h.fail(c, endpointCalculate, err)
	}
	res.DaysToExpiry = days
	return xhttp.SuccessResponse(c, NewPricingResponse(res))
}

func (h *PricingHandler) ImpliedVol(c echo.Context) error {
	defer observe(endpointImpliedVol, time.Now())

	req := &models.ImpliedVolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpointImpliedVol, codeValidation).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	params, _, err := OptionInput{
		Spot:            req.Spot,
		Strike:          req.Strike,
		RatePctDomestic: req.RateDomestic,
		RatePctForeign:  req.RateForeign,
		Notional:        req.Notional,
		OptionType:      req.OptionType,
		Valuation:       req.ValuationDate,
		Expiry:          req.ExpiryDate,
		DayCount:        req.DayCount,
	}.Parameters()
	if err != nil {
		return h.fail(c, endpointImpliedVol, err)
	}

	res, err := h.pricer.ComputeImpliedVol(params, req.MarketPremium)
	if err != nil {
		return h.fail(c, endpointImpliedVol, err)
	}
	return xhttp.SuccessResponse(c, NewImpliedVolResponse(res))
}

func (h *PricingHandler) MarketData(c echo.Context) error {
	defer observe(endpointMarketData, time.Now())

	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpointMarketData, codeValidation).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	tenor := MarketTenor(req.ValuationDate, req.ExpiryDate)
	snap, err := h.market.Resolve(c.Request().Context(), req.Base, req.Quote, tenor)
	if err != nil {
		return h.fail(c, endpointMarketData, err)
	}
	return xhttp.SuccessResponse(c, NewMarketDataResponse(snap))
}

func (h *PricingHandler) Debug(c echo.Context) error {
	return xhttp.SuccessResponse(c, DebugResponse{
		Version: h.version,
		Started: strconv.FormatInt(h.started.Unix(), 10),
		Today:   util.FormatDate(h.now()),
	})
}

func (h *PricingHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps domain errors onto the response envelope.
func (h *PricingHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var ie *models.InputError
	if errors.As(err, &ie) {
		return xhttp.NewAppError(codeInvalidInput, ie.Field, ie.Reason, http.StatusBadRequest).WithError(err)
	}
	var be *pricing.BoundsError
	if errors.As(err, &be) {
		return xhttp.NewAppError(codeBoundsViolation, "market_premium", be.Error(), http.StatusBadRequest).
			WithParam("bound", string(be.Bound)).
			WithParam("limit", be.Limit).
			WithError(err)
	}
	return xhttp.InternalError("calculation failed").WithError(err)
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// OptionInput is a pricing request as a user states it: percent rates and
// calendar dates.
type OptionInput struct {
	Spot, Strike, VolPct, RatePctDomestic, RatePctForeign, Notional float64
	OptionType, Valuation, Expiry, DayCount                         string
}

// Parameters converts percent inputs to decimals and dates to a year
// fraction. It also returns the whole days to expiry.
func (in OptionInput) Parameters() (models.OptionParameters, int, error) {
	kind, err := models.ParseOptionKind(in.OptionType)
	if err != nil {
		return models.OptionParameters{}, 0, err
	}
	valuation, err := util.ParseDate(in.Valuation)
	if err != nil {
		return models.OptionParameters{}, 0, models.NewInputError("valuation_date", "%v", err)
	}
	expiry, err := util.ParseDate(in.Expiry)
	if err != nil {
		return models.OptionParameters{}, 0, models.NewInputError("expiry_date", "%v", err)
	}
	days, T, err := models.YearFraction(valuation, expiry, models.DayCount(in.DayCount))
	if err != nil {
		return models.OptionParameters{}, 0, err
	}
	return models.OptionParameters{
		Spot:         in.Spot,
		Strike:       in.Strike,
		Volatility:   in.VolPct / percent,
		RateDomestic: in.RatePctDomestic / percent,
		RateForeign:  in.RatePctForeign / percent,
		Expiry:       T,
		Kind:         kind,
		Notional:     in.Notional,
	}, days, nil
}

// MarketTenor is the ACT/365 distance between the dates, or one year when
// either is missing or the range is empty.
func MarketTenor(valuation, expiry string) float64 {
	if valuation == "" || expiry == "" {
		return defaultTenor
	}
	v, err := util.ParseDate(valuation)
	if err != nil {
		return defaultTenor
	}
	e, err := util.ParseDate(expiry)
	if err != nil {
		return defaultTenor
	}
	days := int(e.Sub(v).Hours() / 24)
	if days <= 0 {
		return defaultTenor
	}
	return float64(days) / 365
}
