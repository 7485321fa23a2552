package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tracktroop/backend/internal/domain"
)

// Postgres error codes for client-supplied ids. A reference to a missing
// row raises a foreign-key violation; a value that does not parse as a
// uuid raises invalid_text_representation. Either way the id is unknown.
const (
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

func invalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// AssignPlan links a plan to a user; assignedBy comes from the verified
// token. The soldier is notified by mail, best effort.
func (h *Handler) AssignPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required"`
		PlanID string `json:"planId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := &domain.PlanAssignment{
		UserID:     req.UserID,
		PlanID:     req.PlanID,
		AssignedBy: r.Context().Value(SubCtxKey).(string),
	}

	if err := h.store.CreatePlanAssignment(assignment); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation, invalidID(err):
			h.errorResponse(w, r, http.StatusNotFound, "User or plan not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishPlanAssignedMail(r, assignment)

	h.writeJSON(w, r, http.StatusCreated, map[string]any{
		"ok":         true,
		"assignment": assignment,
	})
}

func (h *Handler) GetPlanAssignment(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	assignment, err := h.store.GetLatestPlanAssignment(userID)
	if err != nil {
		switch {
		// a malformed id cannot have assignments, same as an unknown one
		case errors.Is(err, sql.ErrNoRows), invalidID(err):
			h.writeJSON(w, r, http.StatusOK, map[string]any{"assignment": nil})
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	plan, err := h.store.GetFitnessPlanByID(assignment.PlanID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"assignment": assignment,
		"plan":       plan,
	})
}

func (h *Handler) publishPlanAssignedMail(r *http.Request, assignment *domain.PlanAssignment) {
	user, err := h.store.GetUserByID(assignment.UserID)
	if err != nil {
		slog.Error("unable to load assignee for mail", "error", err)
		return
	}
	plan, err := h.store.GetFitnessPlanByID(assignment.PlanID)
	if err != nil {
		slog.Error("unable to load plan for mail", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	msg := domain.MailMessage{
		Type: "plan_assigned",
		To:   user.Email,
		Data: domain.PlanAssignedMailData{
			FullName:  user.FullName,
			PlanTitle: plan.Title,
			Status:    plan.Status,
		},
	}

	if err := h.mailQueue.Publish(ctx, msg); err != nil {
		slog.Error("unable to enqueue assignment mail", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}
