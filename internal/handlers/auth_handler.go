package handlers

import (
	"errors"

	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// HandleRegister creates an account. Failures are a JSON array of
// {code, description} objects.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON([]services.IdentityError{{
			Code:        "InvalidRequest",
			Description: "Invalid request body.",
		}})
	}

	user, err := h.authService.RegisterUser(c.UserContext(), creds)
	if err != nil {
		var regErr *services.RegistrationError
		if errors.As(err, &regErr) {
			return c.Status(fiber.StatusBadRequest).JSON(regErr.Problems)
		}
		logger.FromCtx(c, h.log).Error("Error registering user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	logger.FromCtx(c, h.log).Info("User registered", zap.String("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin checks the credentials and issues a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.FromCtx(c, h.log).Info("Login rejected", zap.String("email", creds.Email))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
			})
		}
		logger.FromCtx(c, h.log).Error("Error during login", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
			"error":   err.Error(),
		})
	}

	return c.JSON(LoginResponse{Token: token, Email: user.Email})
}
