package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
)

type TranslationHandler struct {
	cvRepo       repositories.CVRepository
	translations services.TranslationService
}

func NewTranslationHandler(cvRepo repositories.CVRepository, translations services.TranslationService) *TranslationHandler {
	return &TranslationHandler{
		cvRepo:       cvRepo,
		translations: translations,
	}
}

type translateRequest struct {
	CVID     json.RawMessage `json:"cv_id"`
	Language string          `json:"language"`
}

// HandleTranslate handles POST /api/translate/ with body {cv_id, language}.
func (h *TranslationHandler) HandleTranslate(c *fiber.Ctx) error {
	var req translateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return translateError(c, fiber.StatusBadRequest, "Invalid JSON data")
	}

	cvID, ok := flexibleID(req.CVID)
	if !ok || req.Language == "" {
		return translateError(c, fiber.StatusBadRequest, "cv_id and language are required")
	}

	cv, err := h.cvRepo.FindByID(cvID)
	if err != nil {
		if isNotFound(err) {
			return translateError(c, fiber.StatusNotFound, "CV not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load CV")
	}

	result, err := h.translations.Translate(c.UserContext(), cv, req.Language)
	if err != nil {
		status := fiber.StatusBadGateway
		switch {
		case errors.Is(err, services.ErrUnsupportedLanguage):
			status = fiber.StatusBadRequest
		case errors.Is(err, services.ErrNotConfigured):
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":      "error",
			"message":     result.Error,
			"translation": result,
		})
	}

	return c.JSON(fiber.Map{
		"status":      "success",
		"message":     fmt.Sprintf("CV translated to %s", result.Language),
		"translation": result,
	})
}

// HandleLanguages handles GET /api/translate/languages
func (h *TranslationHandler) HandleLanguages(c *fiber.Ctx) error {
	return c.JSON(services.LanguageCatalog())
}

func translateError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// flexibleID accepts cv_id as a JSON number or a numeric string.
func flexibleID(raw json.RawMessage) (uint, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
