package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/visionary-advance/agency-api/internal/auth"
	"go.uber.org/zap"
)

type AuthHandler struct {
	issuer *auth.TokenIssuer
	logger *zap.Logger
}

func NewAuthHandler(issuer *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
		logger: logger,
	}
}

type loginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName,omitempty" validate:"max=200"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login issues a scoped JWT for an allow-listed admin email. The
// endpoint sits behind the API key, so the key is what gates token
// issuance; the JWT carries the operator's identity for audit trails.
//
// @Summary Issue admin token
// @Description Exchange the API key for a personal JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Admin identity"
// @Success 200 {object} loginResponse
// @Security ApiKeyAuth
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	token, err := h.issuer.Issue(req.Email, req.DisplayName)
	if err != nil {
		if errors.Is(err, auth.ErrNotAdmin) {
			respondWithError(w, http.StatusForbidden, "Email is not on the admin list")
			return
		}
		h.logger.Error("failed to issue token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

// @Summary Current user
// @Description Returns the authenticated identity
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"email":       userCtx.Email,
		"displayName": userCtx.DisplayName,
		"initials":    userCtx.GetDisplayNameInitials(),
		"system":      userCtx.System,
	})
}
