package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tracktroop/backend/internal/domain"
)

func fit() *domain.FitnessStatus {
	s := domain.StatusFit
	return &s
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		w := doJSON(t, h, http.MethodGet, "/fitness", "", nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authorization header required", decodeBody(t, w)["error"])
	})

	t.Run("malformed header", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		w := httptestRequestWithRawAuth(t, h, "Basic abc123")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authorization header format must be Bearer {token}", decodeBody(t, w)["error"])
	})

	t.Run("garbage token", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		w := doJSON(t, h, http.MethodGet, "/fitness", "not-a-jwt", nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", decodeBody(t, w)["error"])
	})
}

func TestGetMyInfo(t *testing.T) {
	store := new(MockStore)
	h, _ := newTestHandler(t, store)

	serviceNo := "SN-000001"
	me := &domain.User{
		ID:        "user-1",
		Email:     "a@b.com",
		FullName:  "A B",
		UserType:  domain.RoleSoldier,
		ServiceNo: &serviceNo,
	}
	store.On("GetUserByID", "user-1").Return(me, nil).Once()

	token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
	w := doJSON(t, h, http.MethodGet, "/me", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "user-1", body["id"])
	assert.Equal(t, "SN-000001", body["serviceNo"])
	// the hash never leaves the server
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetMyInfoDeletedAccount(t *testing.T) {
	store := new(MockStore)
	h, _ := newTestHandler(t, store)

	store.On("GetUserByID", "user-1").Return(nil, sql.ErrNoRows).Once()

	token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
	w := doJSON(t, h, http.MethodGet, "/me", token, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account no longer exists", decodeBody(t, w)["error"])
}

func TestGetFitnessStatuses(t *testing.T) {
	t.Run("map requires clerk or adjutant", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness", token, nil)

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", decodeBody(t, w)["error"])
		store.AssertNotCalled(t, "GetAllFitnessStatuses")
	})

	t.Run("map as clerk", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetAllFitnessStatuses").Return([]domain.UserFitnessStatus{
			{UserID: "user-1", Status: fit()},
			{UserID: "user-2", Status: nil},
		}, nil).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodGet, "/fitness", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Fit", body["user-1"])
		assert.Nil(t, body["user-2"])
	})

	t.Run("single user lookup is open to soldiers", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetUserByID", "user-2").Return(&domain.User{
			ID:            "user-2",
			UserType:      domain.RoleSoldier,
			FitnessStatus: fit(),
		}, nil).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness?userId=user-2", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "user-2", body["userId"])
		assert.Equal(t, "Fit", body["status"])
	})

	t.Run("single user lookup unknown user", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetUserByID", "ghost").Return(nil, sql.ErrNoRows).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness?userId=ghost", token, nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeBody(t, w)["error"])
	})

	t.Run("single user lookup with a malformed id", func(t *testing.T) {
		// a value that is not a uuid is just as unknown as a missing row
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetUserByID", "%27--").Return(nil, &pgconn.PgError{Code: invalidTextRepresentation}).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness?userId=%27--", token, nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeBody(t, w)["error"])
	})
}

func TestUpdateFitnessStatus(t *testing.T) {
	t.Run("soldier is rejected", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodPost, "/fitness", token, map[string]any{
			"userId": "user-2",
			"status": "Fit",
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", decodeBody(t, w)["error"])
		store.AssertNotCalled(t, "UpdateFitnessStatus", mock.Anything, mock.Anything)
	})

	t.Run("clerk updates a status", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("UpdateFitnessStatus", "user-2", domain.StatusUnfit).Return(nil).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness", token, map[string]any{
			"userId": "user-2",
			"status": "Unfit",
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "user-2", body["userId"])
		assert.Equal(t, "Unfit", body["status"])
		store.AssertExpectations(t)
	})

	t.Run("invalid status value", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness", token, map[string]any{
			"userId": "user-2",
			"status": "Ready",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "UpdateFitnessStatus", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("UpdateFitnessStatus", "ghost", domain.StatusFit).Return(sql.ErrNoRows).Once()

		token := issueToken(t, h, "adj-1", "adj@b.com", domain.RoleAdjutant)
		w := doJSON(t, h, http.MethodPost, "/fitness", token, map[string]any{
			"userId": "ghost",
			"status": "Fit",
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeBody(t, w)["error"])
	})

	t.Run("malformed user id", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("UpdateFitnessStatus", "not-a-uuid", domain.StatusFit).
			Return(&pgconn.PgError{Code: invalidTextRepresentation}).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness", token, map[string]any{
			"userId": "not-a-uuid",
			"status": "Fit",
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeBody(t, w)["error"])
	})
}

func TestFitnessPlans(t *testing.T) {
	exercises := []map[string]any{
		{"name": "Push-ups", "duration": "3x15", "focus": "Upper body"},
	}

	t.Run("create requires adjutant", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness/plans", token, map[string]any{
			"title":     "Week 1",
			"status":    "Fit",
			"exercises": exercises,
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		store.AssertNotCalled(t, "CreateFitnessPlan", mock.Anything)
	})

	t.Run("adjutant creates a plan", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		var created *domain.FitnessPlan
		store.On("CreateFitnessPlan", mock.AnythingOfType("*domain.FitnessPlan")).
			Run(func(args mock.Arguments) {
				created = args.Get(0).(*domain.FitnessPlan)
				created.ID = "plan-1"
			}).Return(nil).Once()

		token := issueToken(t, h, "adj-1", "adj@b.com", domain.RoleAdjutant)
		w := doJSON(t, h, http.MethodPost, "/fitness/plans", token, map[string]any{
			"title":     "Week 1",
			"status":    "Fit",
			"exercises": exercises,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, created)
		// authorship comes from the token, not the body
		assert.Equal(t, "adj-1", created.CreatedBy)
		assert.Equal(t, domain.StatusFit, created.Status)
		require.Len(t, created.Exercises, 1)
		assert.Equal(t, "Push-ups", created.Exercises[0].Name)
	})

	t.Run("create rejects empty exercise list", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "adj-1", "adj@b.com", domain.RoleAdjutant)
		w := doJSON(t, h, http.MethodPost, "/fitness/plans", token, map[string]any{
			"title":     "Week 1",
			"status":    "Fit",
			"exercises": []map[string]any{},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "CreateFitnessPlan", mock.Anything)
	})

	t.Run("list filters by status", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetAllFitnessPlans", mock.MatchedBy(func(s *domain.FitnessStatus) bool {
			return s != nil && *s == domain.StatusUnfit
		})).Return([]*domain.FitnessPlan{{ID: "plan-2", Title: "Recovery", Status: domain.StatusUnfit}}, nil).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/plans?status=Unfit", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/plans?status=Ready", token, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid status", decodeBody(t, w)["error"])
	})
}

func TestAssignPlan(t *testing.T) {
	t.Run("soldier is rejected", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodPost, "/fitness/assign", token, map[string]any{
			"userId": "user-2",
			"planId": "plan-1",
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		store.AssertNotCalled(t, "CreatePlanAssignment", mock.Anything)
	})

	t.Run("clerk assigns a plan", func(t *testing.T) {
		store := new(MockStore)
		h, mailQueue := newTestHandler(t, store)

		var created *domain.PlanAssignment
		store.On("CreatePlanAssignment", mock.AnythingOfType("*domain.PlanAssignment")).
			Run(func(args mock.Arguments) {
				created = args.Get(0).(*domain.PlanAssignment)
				created.ID = "assign-1"
			}).Return(nil).Once()
		store.On("GetUserByID", "user-2").Return(&domain.User{
			ID:       "user-2",
			Email:    "s@b.com",
			FullName: "S B",
			UserType: domain.RoleSoldier,
		}, nil).Once()
		store.On("GetFitnessPlanByID", "plan-1").Return(&domain.FitnessPlan{
			ID:     "plan-1",
			Title:  "Week 1",
			Status: domain.StatusFit,
		}, nil).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness/assign", token, map[string]any{
			"userId": "user-2",
			"planId": "plan-1",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, created)
		assert.Equal(t, "clerk-1", created.AssignedBy)

		messages := mailQueue.published()
		require.Len(t, messages, 1)
		assert.Equal(t, "plan_assigned", messages[0].Type)
		assert.Equal(t, "s@b.com", messages[0].To)
	})

	t.Run("unknown user or plan", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("CreatePlanAssignment", mock.AnythingOfType("*domain.PlanAssignment")).
			Return(&pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "plan_assignments_user_id_fkey"}).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness/assign", token, map[string]any{
			"userId": "ghost",
			"planId": "plan-1",
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User or plan not found", decodeBody(t, w)["error"])
	})

	t.Run("malformed plan id", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("CreatePlanAssignment", mock.AnythingOfType("*domain.PlanAssignment")).
			Return(&pgconn.PgError{Code: invalidTextRepresentation}).Once()

		token := issueToken(t, h, "clerk-1", "c@b.com", domain.RoleClerk)
		w := doJSON(t, h, http.MethodPost, "/fitness/assign", token, map[string]any{
			"userId": "user-2",
			"planId": "definitely-not-a-uuid",
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User or plan not found", decodeBody(t, w)["error"])
	})
}

func TestGetPlanAssignment(t *testing.T) {
	t.Run("userId is required", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/assign", token, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "userId is required", decodeBody(t, w)["error"])
	})

	t.Run("malformed userId reads as no assignment", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetLatestPlanAssignment", "oops").
			Return(nil, &pgconn.PgError{Code: invalidTextRepresentation}).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/assign?userId=oops", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		value, present := decodeBody(t, w)["assignment"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("no assignment yet", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetLatestPlanAssignment", "user-1").Return(nil, sql.ErrNoRows).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/assign?userId=user-1", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		value, present := body["assignment"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("latest assignment with its plan", func(t *testing.T) {
		store := new(MockStore)
		h, _ := newTestHandler(t, store)

		store.On("GetLatestPlanAssignment", "user-1").Return(&domain.PlanAssignment{
			ID:     "assign-1",
			UserID: "user-1",
			PlanID: "plan-1",
		}, nil).Once()
		store.On("GetFitnessPlanByID", "plan-1").Return(&domain.FitnessPlan{
			ID:    "plan-1",
			Title: "Week 1",
		}, nil).Once()

		token := issueToken(t, h, "user-1", "a@b.com", domain.RoleSoldier)
		w := doJSON(t, h, http.MethodGet, "/fitness/assign?userId=user-1", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assignment := body["assignment"].(map[string]any)
		plan := body["plan"].(map[string]any)
		assert.Equal(t, "assign-1", assignment["id"])
		assert.Equal(t, "Week 1", plan["title"])
	})
}
