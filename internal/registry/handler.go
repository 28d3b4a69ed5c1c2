package registry

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

// RegistryService is the consumer-side interface the handler needs.
type RegistryService interface {
	RegisterAccount(ctx context.Context, req RegisterAccountRequest) (id.AccountID, error)
	RegisterAdult(ctx context.Context, req RegisterAdultRequest) (id.AdultID, error)
	GetAdult(ctx context.Context, adultID id.AdultID) (*AdultProfile, error)
	ListAdultsByAccount(ctx context.Context, accountID id.AccountID) ([]Adult, error)
}

// Handler exposes registration and registry reads over HTTP.
type Handler struct {
	service RegistryService
	logger  *slog.Logger
}

func NewHandler(service RegistryService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registry routes. Account registration is the one
// unauthenticated write; everything else requires a valid access token.
func (h *Handler) Register(public chi.Router, authed chi.Router) {
	public.Post("/auth/register", h.handleRegisterAccount)
	authed.Post("/adults", h.handleRegisterAdult)
	authed.Get("/adults/{adultID}", h.handleGetAdult)
	authed.Get("/accounts/{accountID}/adults", h.handleListAdults)
}

func (h *Handler) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	accountID, err := h.service.RegisterAccount(ctx, req)
	if err != nil {
		h.logWarnOrError(ctx, "register account failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message":   "account registered",
		"accountId": accountID.String(),
	})
}

func (h *Handler) handleRegisterAdult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterAdultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	adultID, err := h.service.RegisterAdult(ctx, req)
	if err != nil {
		h.logWarnOrError(ctx, "register adult failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "adult registered",
		"adultId": adultID.String(),
	})
}

func (h *Handler) handleGetAdult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adultID, err := id.ParseAdultID(chi.URLParam(r, "adultID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.GetAdult(ctx, adultID)
	if err != nil {
		h.logWarnOrError(ctx, "get adult failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, adultProfileResponse(profile))
}

func (h *Handler) handleListAdults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	adults, err := h.service.ListAdultsByAccount(ctx, accountID)
	if err != nil {
		h.logWarnOrError(ctx, "list adults failed", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(adults))
	for _, adult := range adults {
		out = append(out, adultFields(adult))
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

func adultFields(adult Adult) map[string]any {
	return map[string]any{
		"id":                   adult.ID.String(),
		"name":                 adult.Name,
		"age":                  adult.Age,
		"bloodPressureLimit":   adult.BloodPressureLimit,
		"roomTimeLimitSeconds": adult.RoomTimeLimit,
		"accountId":            adult.AccountID.String(),
	}
}

func adultProfileResponse(profile *AdultProfile) map[string]any {
	fields := adultFields(profile.Adult)
	fields["caregiver"] = map[string]string{
		"name":  profile.CaregiverName,
		"email": profile.CaregiverEmail,
		"phone": profile.CaregiverPhone,
	}
	return fields
}
