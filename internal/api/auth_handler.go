package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritujaab/workout-planner/internal/domain"
	"github.com/ritujaab/workout-planner/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

// CredentialsRequest is the body of signup and login. Presence and strength
// are checked by the service so every problem is reported together.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by every call that signs the user in.
type AuthResponse struct {
	Email string       `json:"email"`
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// --- Handler Methods ---

// Signup creates an account and signs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAuthResponse(token, user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAuthResponse(token, user))
}

// ForgotPassword always answers 202 for a well-formed email, whether or not
// an account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If an account exists for that email, a reset link is on its way"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAuthResponse(token, user))
}

// --- Mappers ---

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func newAuthResponse(token string, user *domain.User) AuthResponse {
	return AuthResponse{Email: user.Email, User: MapUserToResponse(user), Token: token}
}

// bindJSON decodes the body into dst and answers 400 when it is not valid JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		LoggerFrom(c).Debug().Err(err).Msg("malformed request body")
		abortWithError(c, http.StatusBadRequest, "Request body must be valid JSON")
		return false
	}
	return true
}
