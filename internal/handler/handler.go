package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/tracktroop/backend/internal/auth"
	"github.com/tracktroop/backend/internal/config"
	"github.com/tracktroop/backend/internal/domain"
)

// Store is the persistence contract the handlers depend on, implemented by
// repository.Repository and faked in tests.
type Store interface {
	CreateUser(user *domain.User) error
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByID(id string) (*domain.User, error)
	EmailExists(email string) (bool, error)
	UpdateUserPassword(id string, passwordHash string) error
	UpdateFitnessStatus(id string, status domain.FitnessStatus) error
	GetAllFitnessStatuses() ([]domain.UserFitnessStatus, error)
	CreateFitnessPlan(plan *domain.FitnessPlan) error
	GetFitnessPlanByID(id string) (*domain.FitnessPlan, error)
	GetAllFitnessPlans(status *domain.FitnessStatus) ([]*domain.FitnessPlan, error)
	CreatePlanAssignment(assignment *domain.PlanAssignment) error
	GetLatestPlanAssignment(userID string) (*domain.PlanAssignment, error)
}

// MailPublisher sends a transactional mail message to the delivery queue.
type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

// OTPStore keeps short-lived password-reset codes, keyed by user id.
// Implemented by otp.Store over redis and faked in tests.
type OTPStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	tokens     *auth.TokenService
	translator ut.Translator
	mailQueue  MailPublisher
	otpStore   OTPStore

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, tokens *auth.TokenService, mailQueue MailPublisher, otpStore OTPStore) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		tokens:     tokens,
		translator: trans,
		mailQueue:  mailQueue,
		otpStore:   otpStore,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below requires a verified token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(h.myInfo).Get("/me", h.GetMyInfo)

		r.Route("/fitness", func(r chi.Router) {
			r.Get("/", h.GetFitnessStatuses)
			r.With(h.RequiredRole([]domain.Role{domain.RoleClerk, domain.RoleAdjutant})).Post("/", h.UpdateFitnessStatus)

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", h.GetFitnessPlans)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdjutant})).Post("/", h.CreateFitnessPlan)
			})

			r.Route("/assign", func(r chi.Router) {
				r.Get("/", h.GetPlanAssignment)
				r.With(h.RequiredRole([]domain.Role{domain.RoleClerk, domain.RoleAdjutant})).Post("/", h.AssignPlan)
			})
		})
	})
}
