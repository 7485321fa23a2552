package handler

import (
	"net/http"

	"github.com/tracktroop/backend/internal/domain"
)

func (h *Handler) GetFitnessPlans(w http.ResponseWriter, r *http.Request) {
	var status *domain.FitnessStatus

	if param := r.URL.Query().Get("status"); param != "" {
		s := domain.FitnessStatus(param)
		if !domain.ValidFitnessStatus(s) {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid status")
			return
		}
		status = &s
	}

	plans, err := h.store.GetAllFitnessPlans(status)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, plans)
}

// CreateFitnessPlan records a workout plan authored by the calling
// adjutant; createdBy comes from the verified token, never the body.
func (h *Handler) CreateFitnessPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string            `json:"title" validate:"required"`
		Status    string            `json:"status" validate:"required,oneof=Fit Unfit"`
		Exercises []domain.Exercise `json:"exercises" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := &domain.FitnessPlan{
		Title:     req.Title,
		Status:    domain.FitnessStatus(req.Status),
		Exercises: req.Exercises,
		CreatedBy: r.Context().Value(SubCtxKey).(string),
	}

	if err := h.store.CreateFitnessPlan(plan); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, map[string]any{
		"ok":   true,
		"plan": plan,
	})
}
