package handlers

import (
	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/middleware"
	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	resp        responder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, lg *zap.SugaredLogger, dev bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		resp:        responder{key: "message", lg: lg, dev: dev},
	}
}

// RegisterRoutes registers the authentication routes under router.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)

	guard := middleware.AuthRequired(h.authService)
	authRoutes.Get("/me", guard, h.HandleMe)
	authRoutes.Put("/profile", guard, h.HandleUpdateProfile)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"max=255"`
	Email    string `json:"email" form:"email" validate:"omitempty,max=255"`
	Password string `json:"password" form:"password"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	res, err := h.authService.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.resp.fail(c, err, "Server error during registration", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	res, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.resp.fail(c, err, "Server error during login", nil)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// HandleMe returns the user identified by the bearer token.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return h.resp.fail(c, apperrors.NotFound("User not found"), "", nil)
	}
	user, err := h.authService.GetMe(c.UserContext(), userID)
	if err != nil {
		return h.resp.fail(c, err, "Server error", nil)
	}
	return c.JSON(user)
}

// ProfileRequest represents the request body for a profile update. A blank
// password keeps the current one.
type ProfileRequest struct {
	Name     string `json:"name" form:"name" validate:"max=255"`
	Email    string `json:"email" form:"email" validate:"omitempty,max=255"`
	Password string `json:"password" form:"password"`
}

// HandleUpdateProfile updates name, email and optionally the password.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return h.resp.fail(c, apperrors.NotFound("User not found"), "", nil)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, req.Name, req.Email, req.Password)
	if err != nil {
		return h.resp.fail(c, err, "Server error during profile update", nil)
	}
	return c.JSON(fiber.Map{"user": user})
}
