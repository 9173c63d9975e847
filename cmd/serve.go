package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"agvfaults/internal/bootstrap"
	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/domain/fault"
	"agvfaults/internal/errs"
	"agvfaults/internal/infrastructure/ratelimit"
	"agvfaults/internal/infrastructure/telemetry"
	"agvfaults/internal/ports"
	"agvfaults/internal/usecase/faults"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fault report HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *faults.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}
		if addr == "" {
			addr = ":8080"
		}

		var limiter *ratelimit.TokenBucket
		if redisAddr := strings.TrimSpace(app.Config.RateLimit.RedisAddr); redisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: redisAddr})
			limiter = ratelimit.NewTokenBucket(
				client,
				app.Config.RateLimit.Capacity,
				app.Config.RateLimit.RefillPerSecond,
				app.Config.RateLimit.TTL,
			)
			logging.Info(ctx, "rate limiting enabled", slog.String("redis_addr", redisAddr))
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newFaultHandler(ctx, svc, limiter),
		}

		logging.Info(ctx, "fault api server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "fault api server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve fault api")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")
}

type faultService interface {
	ReportFault(context.Context, faults.ReportFaultInput) (faults.FaultItem, error)
	IngestQuickReport(context.Context, string) (faults.FaultItem, error)
	GetFault(context.Context, uint64) (faults.FaultItem, error)
	ListFaults(context.Context, faults.ListFaultsInput) (faults.FaultPage, error)
	UpdateFaultFields(context.Context, uint64, map[string]string) (faults.FaultItem, error)
	FaultStats(context.Context, faults.StatsInput) (faults.StatsResult, error)
	ExportCSV(context.Context, faults.ExportInput, io.Writer) error
}

type faultHTTPHandler struct {
	ctx     context.Context
	svc     faultService
	limiter *ratelimit.TokenBucket
}

type faultResponse struct {
	FaultID           uint64 `json:"fault_id"`
	ReporterName      string `json:"reporter_name"`
	FaultTime         string `json:"fault_time"`
	VehicleID         string `json:"vehicle_id"`
	Category          string `json:"category"`
	Status            string `json:"status"`
	StatusLabel       string `json:"status_label"`
	Description       string `json:"description"`
	Solution          string `json:"solution"`
	ResolutionLog     string `json:"resolution_log"`
	ResponsiblePerson string `json:"responsible_person"`
	CreatedAt         string `json:"created_at"`
}

type faultPageResponse struct {
	Items      []faultResponse `json:"items"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
	TotalCount int64           `json:"total_count"`
}

type statsRowResponse struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type statsResponse struct {
	GroupBy string             `json:"group_by"`
	Rows    []statsRowResponse `json:"rows"`
	Total   int64              `json:"total"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

func newFaultHandler(ctx context.Context, svc faultService, limiter *ratelimit.TokenBucket) http.Handler {
	h := &faultHTTPHandler{
		ctx:     ctx,
		svc:     svc,
		limiter: limiter,
	}

	router := chi.NewRouter()
	router.Use(h.rateLimit)
	router.Post("/faults", h.handleCreate)
	router.Post("/faults/ingest", h.handleIngest)
	router.Get("/faults", h.handleList)
	router.Get("/faults/{faultID}", h.handleGet)
	router.Patch("/faults/{faultID}", h.handleUpdate)
	router.Get("/stats", h.handleStats)
	router.Get("/export", h.handleExport)
	router.Get("/healthz", h.handleHealth)
	router.Handle("/metrics", telemetry.Handler())
	return router
}

func (h *faultHTTPHandler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil || r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, _, err := h.limiter.Allow(r.Context(), "ratelimit:"+clientIP(r))
		if err != nil {
			// Redis being down should not take the API down with it.
			logging.Warn(h.ctx, "rate limiter unavailable", slog.Any("err", errs.Loggable(err)))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			writeAPIError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *faultHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReporterName      string `json:"reporter_name"`
		FaultTime         string `json:"fault_time"`
		VehicleID         string `json:"vehicle_id"`
		Category          string `json:"category"`
		Description       string `json:"description"`
		Solution          string `json:"solution"`
		ResponsiblePerson string `json:"responsible_person"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	item, err := h.svc.ReportFault(r.Context(), faults.ReportFaultInput{
		ReporterName:      body.ReporterName,
		FaultTime:         body.FaultTime,
		VehicleID:         body.VehicleID,
		Category:          body.Category,
		Description:       body.Description,
		Solution:          body.Solution,
		ResponsiblePerson: body.ResponsiblePerson,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	telemetry.FaultsCreated.Inc()
	writeJSON(w, http.StatusCreated, mapFaultResponse(item))
}

func (h *faultHTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	item, err := h.svc.IngestQuickReport(r.Context(), body.Text)
	if err != nil {
		if errors.Is(err, fault.ErrReportFieldMissing) || errors.Is(err, fault.ErrReportTimeFormat) {
			telemetry.IngestFailures.Inc()
		}
		h.writeServiceError(w, err)
		return
	}

	telemetry.FaultsCreated.Inc()
	writeJSON(w, http.StatusCreated, mapFaultResponse(item))
}

func (h *faultHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	faultID, ok := faultIDFromRequest(w, r)
	if !ok {
		return
	}

	item, err := h.svc.GetFault(r.Context(), faultID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFaultResponse(item))
}

func (h *faultHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	result, err := h.svc.ListFaults(r.Context(), faults.ListFaultsInput{
		Reporter:    query.Get("reporter"),
		Responsible: query.Get("responsible"),
		VehicleID:   query.Get("vehicle_id"),
		Status:      query.Get("status"),
		From:        query.Get("from"),
		To:          query.Get("to"),
		Page:        page,
		PerPage:     perPage,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]faultResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, mapFaultResponse(item))
	}
	writeJSON(w, http.StatusOK, faultPageResponse{
		Items:      items,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
		TotalCount: result.TotalCount,
	})
}

func (h *faultHTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	faultID, ok := faultIDFromRequest(w, r)
	if !ok {
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	item, err := h.svc.UpdateFaultFields(r.Context(), faultID, fields)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	telemetry.FaultsUpdated.Inc()
	writeJSON(w, http.StatusOK, mapFaultResponse(item))
}

func (h *faultHTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.svc.FaultStats(r.Context(), faults.StatsInput{
		GroupBy: query.Get("group_by"),
		From:    query.Get("from"),
		To:      query.Get("to"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	rows := make([]statsRowResponse, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, statsRowResponse{Key: row.Key, Count: row.Count})
	}
	writeJSON(w, http.StatusOK, statsResponse{
		GroupBy: result.GroupBy,
		Rows:    rows,
		Total:   result.Total,
	})
}

func (h *faultHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bom := true
	if raw := query.Get("bom"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid bom value")
			return
		}
		bom = parsed
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="faults.csv"`)
	if err := h.svc.ExportCSV(r.Context(), faults.ExportInput{
		From: query.Get("from"),
		To:   query.Get("to"),
		BOM:  bom,
	}, w); err != nil {
		logging.Error(h.ctx, "export faults failed", slog.Any("err", errs.Loggable(err)))
	}
}

func (h *faultHTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *faultHTTPHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrFaultNotFound):
		writeAPIError(w, http.StatusNotFound, "fault not found")
	case errors.Is(err, fault.ErrMissingField),
		errors.Is(err, fault.ErrInvalidStatus),
		errors.Is(err, fault.ErrImmutableField),
		errors.Is(err, fault.ErrUnknownField),
		errors.Is(err, fault.ErrReportFieldMissing),
		errors.Is(err, fault.ErrReportTimeFormat):
		writeAPIError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error(h.ctx, "fault api request failed", slog.Any("err", errs.Loggable(err)))
		writeAPIError(w, http.StatusInternalServerError, "internal error")
	}
}

func faultIDFromRequest(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "faultID")
	faultID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || faultID == 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid fault id")
		return 0, false
	}
	return faultID, true
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func mapFaultResponse(item faults.FaultItem) faultResponse {
	return faultResponse{
		FaultID:           item.FaultID,
		ReporterName:      item.ReporterName,
		FaultTime:         item.FaultTime,
		VehicleID:         item.VehicleID,
		Category:          item.Category,
		Status:            item.Status,
		StatusLabel:       item.StatusLabel,
		Description:       item.Description,
		Solution:          item.Solution,
		ResolutionLog:     item.ResolutionLog,
		ResponsiblePerson: item.ResponsiblePerson,
		CreatedAt:         item.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiErrorResponse{Error: message})
}
