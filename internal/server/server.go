// Package server exposes deal evaluation, validation and rule lookup over a
// JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cast"
	"github.com/youssefawwad88/RealEstate/internal/deal"
	"github.com/youssefawwad88/RealEstate/internal/feasibility"
	"github.com/youssefawwad88/RealEstate/internal/market"
	"github.com/youssefawwad88/RealEstate/internal/policy"
	"github.com/youssefawwad88/RealEstate/pkg/output"
	"github.com/youssefawwad88/RealEstate/pkg/units"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	service       *feasibility.Service
	logger        *zap.Logger
	maxUploadSize int64
	batchLimit    int
	version       string
}

// NewHandler constructs the HTTP handler that serves the feasibility API.
// A nil cfg takes DefaultConfig.
func NewHandler(logger *zap.Logger, service *feasibility.Service, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		service:       service,
		logger:        logger,
		maxUploadSize: cfg.UploadSizeBytes(),
		batchLimit:    cfg.BatchLimit(),
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)
	if limiter := cfg.Limiter(); limiter != nil {
		r.Use(h.rateLimit(limiter))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/countries", h.handleCountries)
		r.Get("/rules/{country}", h.handleRules)
		r.Get("/markets/{country}", h.handleMarket)

		r.Post("/deals/evaluate", h.handleEvaluate)
		r.Post("/deals/batch", h.handleBatch)
		r.Post("/deals/validate", h.handleValidate)
		r.Post("/deals/compare", h.handleCompare)
	})

	return r
}

type dealRequest struct {
	Country  string      `json:"country"`
	Location string      `json:"location"`
	Save     bool        `json:"save"`
	Deal     deal.Record `json:"deal"`
}

func (d dealRequest) scope() feasibility.Scope {
	return feasibility.Scope{Country: d.Country, Location: d.Location}
}

type batchRequest struct {
	Country  string        `json:"country"`
	Location string        `json:"location"`
	Save     bool          `json:"save"`
	Deals    []deal.Record `json:"deals"`
}

type batchResponse struct {
	RunID     string        `json:"runId"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Records   []deal.Record `json:"records"`
	CSV       string        `json:"csv"`
	Duration  string        `json:"duration"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.Countries()
	if err != nil {
		h.respondServiceError(w, err, "server.handleCountries")
		return
	}
	if countries == nil {
		countries = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"countries": countries})
}

func (h *handler) handleRules(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.Rules(chi.URLParam(r, "country"))
	if err != nil {
		h.respondServiceError(w, err, "server.handleRules")
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		data, err := yaml.Marshal(rs)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode rules: %v", err), "server.handleRules")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	h.writeJSON(w, http.StatusOK, rs)
}

func (h *handler) handleMarket(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Market(feasibility.Scope{
		Country:  chi.URLParam(r, "country"),
		Location: r.URL.Query().Get("location"),
	})
	if err != nil {
		h.respondServiceError(w, err, "server.handleMarket")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if !h.decodeJSON(w, r, &req, "server.handleEvaluate") {
		return
	}
	if len(req.Deal) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing deal", "server.handleEvaluate")
		return
	}

	eval, err := h.service.Evaluate(r.Context(), req.scope(), req.Deal, req.Save)
	if err != nil {
		h.respondServiceError(w, err, "server.handleEvaluate")
		return
	}
	h.writeJSON(w, http.StatusOK, eval)
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if !h.decodeJSON(w, r, &req, "server.handleValidate") {
		return
	}

	report, err := h.service.Validate(req.scope(), req.Deal)
	if err != nil {
		h.respondServiceError(w, err, "server.handleValidate")
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

type compareResponse struct {
	Comparison units.Comparison `json:"comparison"`
	Skipped    int              `json:"skipped"`
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !h.decodeJSON(w, r, &req, "server.handleCompare") {
		return
	}
	if len(req.Deals) > h.batchLimit {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d deals exceeds limit of %d", len(req.Deals), h.batchLimit), "server.handleCompare")
		return
	}

	cmp, skipped, err := h.service.Compare(feasibility.Scope{Country: req.Country, Location: req.Location}, req.Deals)
	if err != nil {
		h.respondServiceError(w, err, "server.handleCompare")
		return
	}
	h.writeJSON(w, http.StatusOK, compareResponse{Comparison: cmp, Skipped: skipped})
}

// handleBatch accepts either a JSON body or a multipart upload with a CSV
// "file" part and optional country, location and save form fields.
func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req batchRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		records, ok := h.readCSVUpload(w, r)
		if !ok {
			return
		}
		req = batchRequest{
			Country:  r.FormValue("country"),
			Location: r.FormValue("location"),
			Save:     cast.ToBool(r.FormValue("save")),
			Deals:    records,
		}
	} else if !h.decodeJSON(w, r, &req, "server.handleBatch") {
		return
	}

	if len(req.Deals) > h.batchLimit {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d deals exceeds limit of %d", len(req.Deals), h.batchLimit), "server.handleBatch")
		return
	}

	result, err := h.service.Batch(r.Context(), feasibility.Scope{Country: req.Country, Location: req.Location}, req.Deals, req.Save)
	if err != nil {
		h.respondServiceError(w, err, "server.handleBatch")
		return
	}

	csvText, err := output.BatchCSVString(result.Records)
	if err != nil {
		h.logger.Warn("failed to render batch CSV",
			zap.String("op", "server.handleBatch"),
			zap.Error(err),
		)
	}

	records := result.Records
	if records == nil {
		records = []deal.Record{}
	}
	h.writeJSON(w, http.StatusOK, batchResponse{
		RunID:     result.RunID,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Records:   records,
		CSV:       csvText,
		Duration:  time.Since(start).String(),
	})
}

func (h *handler) readCSVUpload(w http.ResponseWriter, r *http.Request) ([]deal.Record, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleBatch")
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleBatch")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing deals file", "server.handleBatch")
		return nil, false
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleBatch"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read deals file: %v", err), "server.handleBatch")
		return nil, false
	}

	_, records, err := deal.ReadCSV(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse deals file: %v", err), "server.handleBatch")
		return nil, false
	}
	return records, true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func statusFor(err error) int {
	var verr *deal.ValidationError
	switch {
	case errors.Is(err, policy.ErrConfigNotFound), errors.Is(err, market.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, feasibility.ErrNoStore):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
