package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"nearmex/internal/apperr"
	"nearmex/internal/auth"
	"nearmex/internal/metrics"
	"nearmex/internal/reset"
	"nearmex/internal/user"
)

const forgotPasswordMessage = "If that email is registered, a password reset link has been sent"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string    `json:"token"`
	UserID   uint      `json:"userId"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
	Avatar   string    `json:"avatar"`
	Address  string    `json:"address"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateAccount checks a registration body and returns the normalized
// username and email.
func validateAccount(req RegisterRequest) (string, string, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" || email == "" {
		return "", "", apperr.Invalid("Username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return "", "", apperr.Invalid("Email is not valid")
	}
	if err := user.ValidatePassword(req.Password); err != nil {
		return "", "", err
	}
	return username, email, nil
}

// createAccount registers a new account with the given role. A taken username
// or email is ErrValidationConflict.
func createAccount(ctx context.Context, users *user.Store, hasher *user.Hasher, req RegisterRequest, role user.Role) (*user.User, error) {
	username, email, err := validateAccount(req)
	if err != nil {
		return nil, err
	}
	taken, err := users.Taken(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrValidationConflict
	}
	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	// Create reports a unique violation too, covering a concurrent registration.
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// POST /auth/register
func RegisterHandler(users *user.Store, hasher *user.Hasher, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bind(c, &req) {
			return
		}
		u, err := createAccount(c.Request.Context(), users, hasher, req, user.RoleUser)
		if err != nil {
			fail(c, err)
			return
		}
		m.AuthEvent(metrics.EventRegister)
		logFor(c).WithField("user_id", u.ID).Info("user registered")
		message(c, http.StatusCreated, "User registered successfully")
	}
}

// timingHash gives unknown-email logins a hash to verify against, so they take
// as long as a wrong password.
type timingHash struct {
	once sync.Once
	hash string
}

func (t *timingHash) get(hasher *user.Hasher) string {
	t.once.Do(func() {
		t.hash, _ = hasher.Hash("nearmex-timing-equalizer")
	})
	return t.hash
}

// POST /auth/login
func LoginHandler(users *user.Store, hasher *user.Hasher, issuer *auth.TokenIssuer, m *metrics.Metrics) gin.HandlerFunc {
	dummy := &timingHash{}
	return func(c *gin.Context) {
		var req LoginRequest
		if !bind(c, &req) {
			return
		}
		u, err := users.GetByEmail(c.Request.Context(), normalizeEmail(req.Email))
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			fail(c, err)
			return
		}
		if u == nil {
			hasher.Verify(req.Password, dummy.get(hasher))
			m.AuthEvent(metrics.EventLoginFailure)
			fail(c, apperr.ErrInvalidCredentials)
			return
		}
		if !hasher.Verify(req.Password, u.PasswordHash) {
			m.AuthEvent(metrics.EventLoginFailure)
			fail(c, apperr.ErrInvalidCredentials)
			return
		}
		token, err := issuer.Issue(u.ID, u.Role)
		if err != nil {
			fail(c, err)
			return
		}
		m.AuthEvent(metrics.EventLoginSuccess)
		c.JSON(http.StatusOK, LoginResponse{
			Token:    token,
			UserID:   u.ID,
			Username: u.Username,
			Role:     u.Role,
			Avatar:   u.Avatar,
			Address:  u.Address,
		})
	}
}

// GET /auth/profile
func GetProfileHandler(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		u, err := users.GetByID(c.Request.Context(), id.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u.Profile())
	}
}

// PUT /auth/profile
func UpdateProfileHandler(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}
		var req user.ProfileUpdate
		if !bind(c, &req) {
			return
		}
		if err := users.UpdateProfile(c.Request.Context(), id.UserID, req); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Profile updated successfully")
	}
}

// POST /auth/forgot-password
//
// The response is the same whether or not the address exists.
func ForgotPasswordHandler(resets *reset.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if !bind(c, &req) {
			return
		}
		// Detach from the request so a client hanging up does not abort the
		// token write halfway through.
		ctx := context.WithoutCancel(c.Request.Context())
		if err := resets.RequestReset(ctx, normalizeEmail(req.Email)); err != nil {
			logFor(c).WithError(err).Error("password reset request failed")
		}
		message(c, http.StatusOK, forgotPasswordMessage)
	}
}

// POST /auth/reset-password
func ResetPasswordHandler(resets *reset.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if !bind(c, &req) {
			return
		}
		if err := resets.ConsumeReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
			fail(c, err)
			return
		}
		message(c, http.StatusOK, "Password has been reset successfully")
	}
}
