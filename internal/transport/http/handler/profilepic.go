package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-api-accounts/internal/application/profilepic"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/transport/http/middleware"
)

const profilePicField = "profilePic"

// ProfilePicHandler handles the caller's profile picture.
type ProfilePicHandler struct {
	svc      profilepic.Service
	maxBytes int64
}

func NewProfilePicHandler(svc profilepic.Service, maxBytes int64) *ProfilePicHandler {
	return &ProfilePicHandler{svc: svc, maxBytes: maxBytes}
}

func (h *ProfilePicHandler) Upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.maxBytes > 0 {
		// headroom for multipart framing; the service enforces the file limit
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart form with a profilePic file is required")
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "multipart form with a profilePic file is required")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		if part.FormName() != profilePicField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		pic, err := h.svc.Upload(r.Context(), profilepic.UploadInput{
			UserID:   caller.ID,
			Filename: part.FileName(),
			Reader:   part,
		})
		_ = part.Close()
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, pic)
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, reason(err))
		default:
			slog.Error("profile picture upload failed", "user_id", caller.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
}

func (h *ProfilePicHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pic, err := h.svc.Get(r.Context(), caller.ID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Profile picture not found")
		return
	}
	if err != nil {
		slog.Error("profile picture lookup failed", "user_id", caller.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, pic)
}

func (h *ProfilePicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	err := h.svc.Delete(r.Context(), caller.ID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Profile picture not found")
		return
	}
	if err != nil {
		slog.Error("profile picture delete failed", "user_id", caller.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
