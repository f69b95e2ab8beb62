package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"crypto-converter/internal/application"
	"crypto-converter/internal/domain"
	"crypto-converter/internal/infrastructure/http/openapi"
	"crypto-converter/internal/infrastructure/logx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	detailBadRequest       = "bad_request"
	detailPairNotFound     = "currency_pair_not_found"
	detailQuoteNotFound    = "quote_not_found"
	detailQuotesOutdated   = "quotes_outdated"
	detailTemporaryFailure = "temporary_unavailable"
	detailInternal         = "internal_error"
)

var _ openapi.ServerInterface = (*Server)(nil)

type Server struct {
	svc     *application.ConverterService
	ping    func(context.Context) error
	timeout time.Duration
	log     *zap.Logger
}

func NewServer(svc *application.ConverterService) *Server {
	return &Server{svc: svc, log: logx.L()}
}

// SetLogger replaces the package fallback logger.
func (s *Server) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetReadyCheck sets the probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(context.Context) error) { s.ping = fn }

// SetRequestTimeout bounds every request's context; zero disables it.
func (s *Server) SetRequestTimeout(d time.Duration) { s.timeout = d }

func (s *Server) Convert(w http.ResponseWriter, r *http.Request, params openapi.ConvertParams) {
	req, ok := parseConvert(params)
	if !ok {
		writeError(w, http.StatusBadRequest, detailBadRequest)
		return
	}
	conv, err := s.svc.Convert(r.Context(), req)
	if err != nil {
		status, detail := mapError(err)
		if status >= http.StatusInternalServerError {
			logx.FromContext(r.Context(), s.log).Warn("convert_failed",
				zap.String("from", params.From),
				zap.String("to", params.To),
				zap.Error(err))
		}
		writeError(w, status, detail)
		return
	}
	writeJSON(w, http.StatusOK, openapi.ConversionResult{
		Amount: conv.AmountString(),
		Rate:   conv.RateString(),
	})
}

func parseConvert(p openapi.ConvertParams) (application.ConvertRequest, bool) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil || !amount.IsPositive() {
		return application.ConvertRequest{}, false
	}
	if !domain.ValidateTicker(p.From) || !domain.ValidateTicker(p.To) {
		return application.ConvertRequest{}, false
	}
	req := application.ConvertRequest{From: p.From, To: p.To, Amount: amount}
	if p.At != nil {
		at, ok := unixSeconds(*p.At)
		if !ok {
			return application.ConvertRequest{}, false
		}
		req.At = &at
	}
	return req, true
}

// unixSeconds converts a float timestamp to time at microsecond precision.
func unixSeconds(v float64) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt64/1e6 {
		return time.Time{}, false
	}
	return time.UnixMicro(int64(math.Round(v * 1e6))).UTC(), true
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		return http.StatusBadRequest, detailBadRequest
	case errors.Is(err, application.ErrPairNotFound):
		return http.StatusNotFound, detailPairNotFound
	case errors.Is(err, application.ErrQuoteNotFound):
		return http.StatusNotFound, detailQuoteNotFound
	case errors.Is(err, application.ErrStale):
		return http.StatusGone, detailQuotesOutdated
	case errors.Is(err, application.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, detailTemporaryFailure
	default:
		return http.StatusInternalServerError, detailInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, openapi.Error{Detail: detail})
}
