package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tracktroop/backend/internal/domain"
)

// GetFitnessStatuses serves both shapes of the status lookup: with a
// userId query parameter it returns that user's status, without one it
// returns the full userId→status map (clerk and adjutant only).
func (h *Handler) GetFitnessStatuses(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	if userID == "" {
		role := r.Context().Value(RoleCtxKey).(domain.Role)
		if role != domain.RoleClerk && role != domain.RoleAdjutant {
			h.errorResponse(w, r, http.StatusForbidden, "Insufficient permissions")
			return
		}

		statuses, err := h.store.GetAllFitnessStatuses()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		statusMap := make(map[string]*domain.FitnessStatus, len(statuses))
		for _, s := range statuses {
			statusMap[s.UserID] = s.Status
		}

		h.writeJSON(w, r, http.StatusOK, statusMap)
		return
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), invalidID(err):
			h.errorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"userId": user.ID,
		"status": user.FitnessStatus,
	})
}

func (h *Handler) UpdateFitnessStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required"`
		Status string `json:"status" validate:"required,oneof=Fit Unfit"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	status := domain.FitnessStatus(req.Status)

	if err := h.store.UpdateFitnessStatus(req.UserID, status); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), invalidID(err):
			h.errorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"ok":     true,
		"userId": req.UserID,
		"status": status,
	})
}
