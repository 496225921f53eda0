package handlers

import (
	"errors"

	"netguard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// authMessages are the user-visible texts for auth flow failures.
var authMessages = map[error]string{
	services.ErrPasswordMismatch:  "Passwords do not match",
	services.ErrEmailRegistered:   "Email already registered",
	services.ErrUserNotRegistered: "User not registered",
	services.ErrIncorrectPassword: "Incorrect password",
}

// AuthHandler handles the signup and login forms.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.ShowLogin)
	router.Get("/login", h.ShowLogin)
	router.Post("/login", h.HandleLogin)
	router.Get("/signup", h.ShowSignup)
	router.Post("/signup", h.HandleSignup)
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{})
}

// ShowSignup renders the signup form.
func (h *AuthHandler) ShowSignup(c *fiber.Ctx) error {
	return c.Render("signup", fiber.Map{})
}

// HandleSignup registers a user and redirects to the login page.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	if !hasFormKeys(c, "name", "email", "password", "confirm_password") {
		return renderError(c, "signup", fiber.StatusBadRequest, "All fields are required")
	}
	var req services.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid signup form", zap.Error(err))
		return renderError(c, "signup", fiber.StatusBadRequest, "Invalid form submission")
	}
	if err := h.validate.Struct(req); err != nil {
		return renderError(c, "signup", fiber.StatusBadRequest, "Fields must be at most 255 characters")
	}

	if _, err := h.authService.Signup(req); err != nil {
		if msg, ok := userMessage(err); ok {
			return renderError(c, "signup", fiber.StatusOK, msg)
		}
		return err
	}
	return c.Redirect("/login", fiber.StatusFound)
}

// HandleLogin checks credentials and redirects to the home page.
// No session is established.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	if !hasFormKeys(c, "email", "password") {
		return renderError(c, "login", fiber.StatusBadRequest, "Email and password are required")
	}
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid login form", zap.Error(err))
		return renderError(c, "login", fiber.StatusBadRequest, "Invalid form submission")
	}
	if err := h.validate.Struct(req); err != nil {
		return renderError(c, "login", fiber.StatusBadRequest, "Fields must be at most 255 characters")
	}

	if _, err := h.authService.Login(req); err != nil {
		if msg, ok := userMessage(err); ok {
			return renderError(c, "login", fiber.StatusOK, msg)
		}
		return err
	}
	return c.Redirect("/home", fiber.StatusFound)
}

// hasFormKeys reports whether every key was submitted, empty values included.
func hasFormKeys(c *fiber.Ctx, keys ...string) bool {
	args := c.Request().PostArgs()
	form, _ := c.MultipartForm()
	for _, key := range keys {
		if args.Has(key) {
			continue
		}
		if form != nil {
			if _, ok := form.Value[key]; ok {
				continue
			}
		}
		return false
	}
	return true
}

func userMessage(err error) (string, bool) {
	for target, msg := range authMessages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

func renderError(c *fiber.Ctx, view string, status int, msg string) error {
	return c.Status(status).Render(view, fiber.Map{"Error": msg})
}
