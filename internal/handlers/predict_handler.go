package handlers

import (
	"errors"
	"time"

	"netguard/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PredictHandler serves the inference endpoint.
type PredictHandler struct {
	service *services.PredictService
	logger  *zap.Logger
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(service *services.PredictService, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the predict and health routes.
func (h *PredictHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/predict", h.HandlePredict)
	router.Get("/health", h.HandleHealth)
}

// HandlePredict scores the uploaded CSV in the multipart field "file".
func (h *PredictHandler) HandlePredict(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	report, err := h.service.Predict(file)
	if err != nil {
		if errors.Is(err, services.ErrMissingFeatures) {
			h.logger.Info("rejected upload", zap.String("file", header.Filename), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required features",
			})
		}
		return err
	}
	return c.JSON(report)
}

// HandleHealth reports liveness and the loaded feature count.
func (h *PredictHandler) HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"features": len(h.service.Features()),
	})
}
