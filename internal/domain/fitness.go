package domain

import (
	"time"
)

type Exercise struct {
	Name     string `json:"name" validate:"required"`
	Duration string `json:"duration" validate:"required"`
	Focus    string `json:"focus" validate:"required"`
}

type FitnessPlan struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Status    FitnessStatus `json:"status"`
	Exercises []Exercise    `json:"exercises"`
	CreatedBy string        `json:"createdBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

type PlanAssignment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	PlanID     string    `json:"planId"`
	AssignedBy string    `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
}
