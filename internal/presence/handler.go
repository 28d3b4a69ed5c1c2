package presence

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// PresenceService is the consumer-side interface the handler needs.
type PresenceService interface {
	RecordPresence(ctx context.Context, req ReportRequest) (*Event, *Confirmation, error)
	ListPresence(ctx context.Context, adultID id.AdultID) ([]HistoryRecord, error)
	RecordExcursionStart(ctx context.Context, req ExcursionStartRequest) (*Excursion, error)
	CloseExcursion(ctx context.Context, excursionID id.RecordID, returnedAt *time.Time) (*Excursion, error)
	ListExcursions(ctx context.Context, adultID id.AdultID) ([]Excursion, error)
}

// Handler exposes the presence and excursion endpoints.
type Handler struct {
	service PresenceService
	logger  *slog.Logger
}

func NewHandler(service PresenceService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/presence", h.handleReport)
	r.Get("/adults/{adultID}/presence", h.handleHistory)
	r.Post("/excursions", h.handleExcursionStart)
	r.Post("/excursions/{excursionID}/return", h.handleExcursionReturn)
	r.Get("/adults/{adultID}/excursions", h.handleExcursionList)
}

type reportRequest struct {
	AdultID         string   `json:"adultId"`
	AdultIDs        []string `json:"adultIds"`
	Zone            string   `json:"zone"`
	DurationSeconds *int64   `json:"durationSeconds"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	adultIDs := req.AdultIDs
	if len(adultIDs) == 0 && req.AdultID != "" {
		adultIDs = []string{req.AdultID}
	}

	_, confirmation, err := h.service.RecordPresence(ctx, ReportRequest{
		AdultIDs:        adultIDs,
		Zone:            req.Zone,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		h.logWarnOrError(ctx, "record presence failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "presence recorded",
		"registro": confirmation,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adultID, err := id.ParseAdultID(chi.URLParam(r, "adultID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListPresence(ctx, adultID)
	if err != nil {
		h.logWarnOrError(ctx, "list presence failed", err)
		httputil.WriteError(w, err)
		return
	}
	if len(records) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no presence records for adult"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    records,
		"count":   len(records),
	})
}

type excursionStartRequest struct {
	AdultID     string     `json:"adultId"`
	Coordinates []float64  `json:"coordinates"`
	DepartedAt  *time.Time `json:"departedAt"`
	ReturnedAt  *time.Time `json:"returnedAt"`
}

func (h *Handler) handleExcursionStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req excursionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	excursion, err := h.service.RecordExcursionStart(ctx, ExcursionStartRequest{
		AdultID:     req.AdultID,
		Coordinates: req.Coordinates,
		DepartedAt:  req.DepartedAt,
		ReturnedAt:  req.ReturnedAt,
	})
	if err != nil {
		h.logWarnOrError(ctx, "start excursion failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":   "excursion started",
		"excursion": excursionFields(*excursion),
	})
}

type excursionReturnRequest struct {
	ReturnedAt *time.Time `json:"returnedAt"`
}

func (h *Handler) handleExcursionReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	excursionID, err := id.ParseRecordID(chi.URLParam(r, "excursionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req excursionReturnRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	excursion, err := h.service.CloseExcursion(ctx, excursionID, req.ReturnedAt)
	if err != nil {
		h.logWarnOrError(ctx, "close excursion failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "excursion closed",
		"excursion": excursionFields(*excursion),
	})
}

func (h *Handler) handleExcursionList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adultID, err := id.ParseAdultID(chi.URLParam(r, "adultID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	excursions, err := h.service.ListExcursions(ctx, adultID)
	if err != nil {
		h.logWarnOrError(ctx, "list excursions failed", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(excursions))
	for _, excursion := range excursions {
		out = append(out, excursionFields(excursion))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    out,
		"count":   len(out),
	})
}

func (h *Handler) logWarnOrError(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func excursionFields(excursion Excursion) map[string]any {
	fields := map[string]any{
		"id":          excursion.ID.String(),
		"adultId":     excursion.AdultID.String(),
		"coordinates": []float64{excursion.Longitude, excursion.Latitude},
		"departedAt":  excursion.DepartedAt,
	}
	if excursion.ReturnedAt != nil {
		fields["returnedAt"] = *excursion.ReturnedAt
	}
	if excursion.ElapsedOutside != nil {
		fields["elapsedOutsideSeconds"] = *excursion.ElapsedOutside
	}
	return fields
}
