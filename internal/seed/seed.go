package seed

import (
	"fmt"
	"log/slog"

	"github.com/tracktroop/backend/internal/auth"
	"github.com/tracktroop/backend/internal/domain"
	"github.com/tracktroop/backend/internal/repository"
	"github.com/tracktroop/backend/internal/utils"
)

var soldierNames = []string{
	"Aiden Brooks", "Marcus Webb", "Elena Vasquez", "Tom Okafor",
	"Priya Nair", "Jack Mercer", "Sofia Lindqvist", "Daniel Cho",
}

// SeedDemoData inserts a small demo unit: soldiers with alternating
// fitness statuses, one clerk, one adjutant, a plan per status and one
// assignment, all sharing the configured seed password.
func SeedDemoData(repo *repository.Repository, password string, soldierCount int) error {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	adjutant := &domain.User{
		Email:        "seed.adjutant@tracktroop.local",
		PasswordHash: passwordHash,
		FullName:     "Nora Castellano",
		UserType:     domain.RoleAdjutant,
	}
	if err := repo.CreateUser(adjutant); err != nil {
		return fmt.Errorf("create adjutant: %w", err)
	}

	clerk := &domain.User{
		Email:        "seed.clerk@tracktroop.local",
		PasswordHash: passwordHash,
		FullName:     "Owen Delacroix",
		UserType:     domain.RoleClerk,
	}
	if err := repo.CreateUser(clerk); err != nil {
		return fmt.Errorf("create clerk: %w", err)
	}

	if soldierCount > len(soldierNames) {
		soldierCount = len(soldierNames)
	}

	soldiers := make([]*domain.User, 0, soldierCount)
	for i := 0; i < soldierCount; i++ {
		serviceNo := utils.GenerateRandomServiceNo()
		soldier := &domain.User{
			Email:        fmt.Sprintf("seed.soldier%d@tracktroop.local", i+1),
			PasswordHash: passwordHash,
			FullName:     soldierNames[i],
			UserType:     domain.RoleSoldier,
			ServiceNo:    &serviceNo,
		}
		if err := repo.CreateUser(soldier); err != nil {
			return fmt.Errorf("create soldier %d: %w", i+1, err)
		}

		status := domain.StatusFit
		if i%2 == 1 {
			status = domain.StatusUnfit
		}
		if err := repo.UpdateFitnessStatus(soldier.ID, status); err != nil {
			return fmt.Errorf("set fitness status for soldier %d: %w", i+1, err)
		}

		soldiers = append(soldiers, soldier)
	}

	fitPlan := &domain.FitnessPlan{
		Title:  "Fit Weekly Plan - Week 1",
		Status: domain.StatusFit,
		Exercises: []domain.Exercise{
			{Name: "Endurance Run", Duration: "30 min", Focus: "Cardio"},
			{Name: "Core Circuit", Duration: "20 min", Focus: "Core"},
		},
		CreatedBy: adjutant.ID,
	}
	if err := repo.CreateFitnessPlan(fitPlan); err != nil {
		return fmt.Errorf("create fit plan: %w", err)
	}

	unfitPlan := &domain.FitnessPlan{
		Title:  "Recovery Plan - Week 1",
		Status: domain.StatusUnfit,
		Exercises: []domain.Exercise{
			{Name: "Brisk Walk", Duration: "20 min", Focus: "Cardio"},
			{Name: "Mobility Drills", Duration: "15 min", Focus: "Flexibility"},
		},
		CreatedBy: adjutant.ID,
	}
	if err := repo.CreateFitnessPlan(unfitPlan); err != nil {
		return fmt.Errorf("create recovery plan: %w", err)
	}

	if len(soldiers) > 0 {
		assignment := &domain.PlanAssignment{
			UserID:     soldiers[0].ID,
			PlanID:     fitPlan.ID,
			AssignedBy: clerk.ID,
		}
		if err := repo.CreatePlanAssignment(assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
	}

	slog.Info("demo data inserted", "soldiers", len(soldiers), "plans", 2)
	return nil
}
