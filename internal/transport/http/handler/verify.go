package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/domain"
)

// VerifyHandler serves the link embedded in verification emails.
type VerifyHandler struct {
	svc verification.Service
}

func NewVerifyHandler(svc verification.Service) *VerifyHandler { return &VerifyHandler{svc: svc} }

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Verify(r.Context(), q.Get("token"))
	switch {
	case err == nil && res.AlreadyVerified:
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email already verified."})
	case err == nil:
		slog.Info("email verified", "email", res.Email)
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification successful. Your email has been verified."})
	case errors.Is(err, domain.ErrInvalidToken):
		slog.Debug("verification rejected", "email", q.Get("email"), "err", err)
		writeErrorCode(w, http.StatusBadRequest, "Invalid verification link or token does not exist", "invalid_link")
	case errors.Is(err, domain.ErrExpiredToken):
		slog.Debug("verification rejected", "email", q.Get("email"), "err", err)
		writeErrorCode(w, http.StatusForbidden, "Verification link has expired", "expired_link")
	default:
		slog.Error("verification failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error during verification process")
	}
}
