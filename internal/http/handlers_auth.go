package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type userJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserJSON(u storage.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := s.authService.Register(r.Context(),
		sanitizeInput(req.Name), sanitizeInput(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "User with this email already exists")
		case auth.IsPasswordPolicyError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "Registration failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "User created successfully",
		"showWelcome": true,
		"token":       token,
		"user":        toUserJSON(user),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := s.authService.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		s.logger.ErrorContext(r.Context(), "Login failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    toUserJSON(user),
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.authService.ForgotPassword(r.Context(), sanitizeInput(req.Email)); err != nil {
		s.logger.ErrorContext(r.Context(), "Forgot password failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Same response whether or not the account exists.
	writeMessage(w, http.StatusOK, "If an account with that email exists, a password reset link has been sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.authService.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Token and new password are required")
		case errors.Is(err, services.ErrResetTokenInvalid):
			writeError(w, http.StatusBadRequest, "Invalid or expired token")
		case auth.IsPasswordPolicyError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "Reset password failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password has been reset successfully")
}
