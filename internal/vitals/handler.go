package vitals

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// VitalsService is the consumer-side interface the handler needs.
type VitalsService interface {
	RecordTemperature(ctx context.Context, req TemperatureRequest) (*Temperature, error)
	ListTemperatures(ctx context.Context, adultID id.AdultID) ([]Temperature, error)
	RecordBloodPressure(ctx context.Context, req BloodPressureRequest) (*BloodPressure, error)
	ListBloodPressures(ctx context.Context, adultID id.AdultID) ([]BloodPressure, error)
	RecordMedication(ctx context.Context, req MedicationRequest) (*MedicationReminder, error)
	ListMedications(ctx context.Context, adultID id.AdultID) ([]MedicationReminder, error)
}

type Handler struct {
	service VitalsService
	logger  *slog.Logger
}

func NewHandler(service VitalsService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/vitals/temperature", h.handleRecordTemperature)
	r.Post("/vitals/blood-pressure", h.handleRecordBloodPressure)
	r.Post("/vitals/medication", h.handleRecordMedication)
	r.Get("/adults/{adultID}/temperatures", h.handleListTemperatures)
	r.Get("/adults/{adultID}/blood-pressures", h.handleListBloodPressures)
	r.Get("/adults/{adultID}/medications", h.handleListMedications)
}

func (h *Handler) handleRecordTemperature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TemperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	t, err := h.service.RecordTemperature(ctx, req)
	if err != nil {
		h.logWarnOrError(ctx, "record temperature failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeCreated(w, t)
}

func (h *Handler) handleRecordBloodPressure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BloodPressureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	bp, err := h.service.RecordBloodPressure(ctx, req)
	if err != nil {
		h.logWarnOrError(ctx, "record blood pressure failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeCreated(w, bp)
}

func (h *Handler) handleRecordMedication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	m, err := h.service.RecordMedication(ctx, req)
	if err != nil {
		h.logWarnOrError(ctx, "record medication failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeCreated(w, m)
}

func (h *Handler) handleListTemperatures(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, adultID id.AdultID) (any, int, error) {
		out, err := h.service.ListTemperatures(ctx, adultID)
		return out, len(out), err
	})
}

func (h *Handler) handleListBloodPressures(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, adultID id.AdultID) (any, int, error) {
		out, err := h.service.ListBloodPressures(ctx, adultID)
		return out, len(out), err
	})
}

func (h *Handler) handleListMedications(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context, adultID id.AdultID) (any, int, error) {
		out, err := h.service.ListMedications(ctx, adultID)
		return out, len(out), err
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, id.AdultID) (any, int, error)) {
	ctx := r.Context()

	adultID, err := id.ParseAdultID(chi.URLParam(r, "adultID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	data, count, err := fetch(ctx, adultID)
	if err != nil {
		h.logWarnOrError(ctx, "list vitals failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"count":   count,
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

func writeCreated(w http.ResponseWriter, data any) {
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    data,
	})
}
