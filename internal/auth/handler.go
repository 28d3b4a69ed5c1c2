package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carelink/internal/platform/middleware"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/httputil"
	"carelink/pkg/requestcontext"
)

// AuthService is the consumer-side interface the handler needs.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ForgetDevice(ctx context.Context, accountID id.AccountID, rememberedToken string) error
}

// Handler exposes login and device management over HTTP.
type Handler struct {
	service AuthService
	logger  *slog.Logger
}

func NewHandler(service AuthService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public login route on r and the authenticated device
// route on authed.
func (h *Handler) Register(r chi.Router, authed chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	authed.Delete("/auth/devices", h.handleForgetDevice)
}

type loginResponse struct {
	Message         string `json:"message"`
	ShortLivedToken string `json:"shortLivedToken"`
	LongLivedToken  string `json:"longLivedToken,omitempty"`
	Role            string `json:"role"`
	AccountID       string `json:"accountId"`
	AdultID         string `json:"adultId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Login(ctx, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.WarnContext(ctx, "login rejected",
				"request_id", requestcontext.RequestID(ctx),
			)
		} else if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "login failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Message:         "login successful",
		ShortLivedToken: result.AccessToken,
		LongLivedToken:  result.RememberedToken,
		Role:            result.Role,
		AccountID:       result.AccountID,
		AdultID:         result.AdultID,
	})
}

type forgetDeviceRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleForgetDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := requestcontext.AccountID(ctx)
	if accountID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req forgetDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token is required"))
		return
	}

	if err := h.service.ForgetDevice(ctx, accountID, req.Token); err != nil {
		h.logger.WarnContext(ctx, "forget device failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Validator adapts the token service to the middleware's interface.
type Validator struct {
	tokens *TokenService
}

func NewValidator(tokens *TokenService) *Validator {
	return &Validator{tokens: tokens}
}

func (v *Validator) ValidateAccess(tokenString string) (*middleware.AccessClaims, error) {
	claims, err := v.tokens.ValidateAccess(tokenString)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &middleware.AccessClaims{
		AccountID: accountID,
		Role:      id.Role(claims.Role),
	}, nil
}
