package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-api-accounts/internal/application/user"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/transport/http/middleware"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, u)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, "The user already exists")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, reason(err))
	case errors.Is(err, domain.ErrEnqueueFailed):
		writeErrorCode(w, http.StatusInternalServerError, "Failed to send verification token.", "verification_not_scheduled")
	default:
		slog.Error("register failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *UserHandler) GetSelf(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Get(r.Context(), caller.ID)
	if err != nil {
		slog.Error("get self failed", "user_id", caller.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateUserRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			writeError(w, http.StatusBadRequest, "Only first_name, last_name, and password can be updated.")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.svc.Update(r.Context(), caller.ID, req)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, reason(err))
	default:
		slog.Error("update self failed", "user_id", caller.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// reason drops the trailing sentinel from a wrapped service error.
func reason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[:i]
	}
	return msg
}
