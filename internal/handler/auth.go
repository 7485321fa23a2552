package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tracktroop/backend/internal/auth"
	"github.com/tracktroop/backend/internal/domain"
	"github.com/tracktroop/backend/internal/utils"
)

// AuthResponse is the success body of the signup and login endpoints.
type AuthResponse struct {
	Message string             `json:"message"`
	User    *domain.PublicUser `json:"user"`
	Token   string             `json:"token"`
}

// Signup validates the request in a fixed order so every failure has a
// distinct message, then hashes, persists and issues a token. Creation is
// the last step that may fail before token issuance; if issuing the token
// fails the created account is still returned, just without a token.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FullName  string `json:"fullName"`
		UserType  string `json:"userType"`
		ServiceNo string `json:"serviceNo"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.FullName == "" || req.UserType == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "Missing required fields")
		return
	}

	userType := domain.Role(req.UserType)
	if !domain.ValidRole(userType) {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid user type")
		return
	}

	if !auth.EmailPattern.MatchString(req.Email) {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid email format")
		return
	}

	if !auth.ValidPassword(req.Password) {
		h.errorResponse(w, r, http.StatusBadRequest, auth.WeakPasswordMessage)
		return
	}

	email := auth.NormalizeEmail(req.Email)

	// fast path only; the unique constraint below is what actually
	// guarantees uniqueness under concurrent signups
	exists, err := h.store.EmailExists(email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, http.StatusConflict, "User with this email already exists")
		return
	}

	if userType == domain.RoleSoldier && req.ServiceNo == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "Service number is required for soldiers")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		UserType:     userType,
	}
	if userType == domain.RoleSoldier {
		user.ServiceNo = &req.ServiceNo
	}

	if err := h.store.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.errorResponse(w, r, http.StatusConflict, "User with this email already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.UserType)
	if err != nil {
		// the account exists at this point; return it rather than lose it
		h.logInternalServerError(r, err)
		token = ""
	}

	h.publishWelcomeMail(r, user)

	h.writeJSON(w, r, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		User:    user.Public(),
		Token:   token,
	})
}

// Login verifies credentials and optionally the expected role. Unknown
// email and wrong password produce the same response so accounts cannot be
// enumerated; a role mismatch names the stored role, the caller has already
// proven possession of the password by then.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		UserType string `json:"userType"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(auth.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		h.errorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if req.UserType != "" && domain.Role(req.UserType) != user.UserType {
		h.errorResponse(w, r, http.StatusForbidden, fmt.Sprintf("Invalid user type. Expected %s", user.UserType))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.UserType)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}

// publishWelcomeMail enqueues the signup welcome mail. Delivery is best
// effort; a broker failure must not fail the signup.
func (h *Handler) publishWelcomeMail(r *http.Request, user *domain.User) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	msg := domain.MailMessage{
		Type: "welcome",
		To:   user.Email,
		Data: domain.WelcomeMailData{
			FullName: user.FullName,
			UserType: user.UserType,
		},
	}

	if err := h.mailQueue.Publish(ctx, msg); err != nil {
		slog.Error("unable to enqueue welcome mail", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	const sentMessage = "If that account exists, a reset code has been sent"

	user, err := h.store.GetUserByEmail(auth.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// claim success for unknown accounts too, the endpoint must
			// not reveal which emails are registered
			h.writeJSON(w, r, http.StatusOK, map[string]string{"message": sentMessage})
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	key := fmt.Sprintf("otp_reset_password_%s", user.ID)
	if err := h.otpStore.Set(ctx, key, otp, time.Duration(h.config.OTP.Expiration)*time.Second); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailCtx, mailCancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer mailCancel()

	msg := domain.MailMessage{
		Type: "reset_password",
		To:   user.Email,
		Data: domain.ResetPasswordMailData{
			FullName:   user.FullName,
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // shown in minutes
		},
	}
	if err := h.mailQueue.Publish(mailCtx, msg); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"message": sentMessage})
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !auth.ValidPassword(req.Password) {
		h.errorResponse(w, r, http.StatusBadRequest, auth.WeakPasswordMessage)
		return
	}

	user, err := h.store.GetUserByEmail(auth.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid reset code")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	key := fmt.Sprintf("otp_reset_password_%s", user.ID)
	otp, err := h.otpStore.Get(ctx, key)
	if err != nil || otp != req.OTP {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid reset code")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.store.UpdateUserPassword(user.ID, passwordHash); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.otpStore.Del(ctx, key); err != nil {
		// the password is already updated and the code expires on its own
		h.logInternalServerError(r, err)
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"message": "Password reset successful"})
}
