package snapshot

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// SnapshotService is the consumer-side interface the handler needs.
type SnapshotService interface {
	GetAdultSnapshot(ctx context.Context, adultID id.AdultID) (*Snapshot, error)
}

type Handler struct {
	service SnapshotService
	logger  *slog.Logger
}

func NewHandler(service SnapshotService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/adults/{adultID}/snapshot", h.handleSnapshot)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adultID, err := id.ParseAdultID(chi.URLParam(r, "adultID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.GetAdultSnapshot(ctx, adultID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "snapshot failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		} else {
			h.logger.WarnContext(ctx, "snapshot failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	adult := snap.Adult.Adult
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"adult": map[string]any{
			"id":                   adult.ID.String(),
			"name":                 adult.Name,
			"age":                  adult.Age,
			"bloodPressureLimit":   adult.BloodPressureLimit,
			"roomTimeLimitSeconds": adult.RoomTimeLimit,
			"caregiver": map[string]string{
				"name":  snap.Adult.CaregiverName,
				"email": snap.Adult.CaregiverEmail,
				"phone": snap.Adult.CaregiverPhone,
			},
		},
		"temperatures":   snap.Temperatures,
		"presence":       snap.Presence,
		"bloodPressures": snap.BloodPressures,
		"medications":    snap.Medications,
	})
}
