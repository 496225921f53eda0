package handlers

import "github.com/gofiber/fiber/v2"

// PageHandler serves the static pages. None of them check for a login.
type PageHandler struct{}

// NewPageHandler creates a new PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// RegisterRoutes registers one GET route per page.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	for _, page := range []string{"home", "dataset", "intrusiondetection", "executivedashboard"} {
		router.Get("/"+page, h.render(page))
	}
}

func (h *PageHandler) render(view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render(view, fiber.Map{})
	}
}
