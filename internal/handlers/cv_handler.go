package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
)

// CVHandler serves the JSON CV API. index may be nil when search is disabled.
type CVHandler struct {
	cvRepo       repositories.CVRepository
	queue        services.JobQueue
	translations services.TranslationService
	index        services.CVIndex
	log          *zap.Logger
}

func NewCVHandler(
	cvRepo repositories.CVRepository,
	queue services.JobQueue,
	translations services.TranslationService,
	index services.CVIndex,
	log *zap.Logger,
) *CVHandler {
	return &CVHandler{
		cvRepo:       cvRepo,
		queue:        queue,
		translations: translations,
		index:        index,
		log:          log,
	}
}

// HandleList handles GET /api/cvs/
func (h *CVHandler) HandleList(c *fiber.Ctx) error {
	page, pageSize := pageParam(c), pageSizeParam(c)

	cvs, total, err := h.cvRepo.List(page, pageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list CVs")
	}

	items := make([]models.CVListItem, 0, len(cvs))
	for i := range cvs {
		items = append(items, models.NewCVListItem(&cvs[i]))
	}

	return c.JSON(models.PageResponse[models.CVListItem]{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  items,
	})
}

// HandleCreate handles POST /api/cvs/
func (h *CVHandler) HandleCreate(c *fiber.Ctx) error {
	var input models.CVInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if errs := input.Validate(); errs.HasErrors() {
		return validationJSON(c, errs)
	}

	cv := &models.CV{}
	input.ApplyTo(cv)
	if err := h.cvRepo.Create(cv); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create CV")
	}

	h.reindex(c.UserContext(), cv.ID)
	return c.Status(fiber.StatusCreated).JSON(cv)
}

// HandleGet handles GET /api/cvs/:id/
func (h *CVHandler) HandleGet(c *fiber.Ctx) error {
	cv, err := h.lookup(c)
	if err != nil {
		return err
	}
	if cv == nil {
		return notFoundJSON(c)
	}
	return c.JSON(cv)
}

// HandleUpdate handles PUT /api/cvs/:id/, a full replacement of the writable fields.
func (h *CVHandler) HandleUpdate(c *fiber.Ctx) error {
	cv, err := h.lookup(c)
	if err != nil {
		return err
	}
	if cv == nil {
		return notFoundJSON(c)
	}

	var input models.CVInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	return h.save(c, cv, input)
}

// HandlePatch handles PATCH /api/cvs/:id/. The merged record must still be valid.
func (h *CVHandler) HandlePatch(c *fiber.Ctx) error {
	cv, err := h.lookup(c)
	if err != nil {
		return err
	}
	if cv == nil {
		return notFoundJSON(c)
	}

	var patch models.CVPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	return h.save(c, cv, patch.Merge(cv))
}

// HandleDelete handles DELETE /api/cvs/:id/
func (h *CVHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundJSON(c)
	}

	if err := h.cvRepo.Delete(id); err != nil {
		if isNotFound(err) {
			return notFoundJSON(c)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete CV")
	}

	h.translations.Invalidate(id)
	if h.index != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		if err := h.index.RemoveCV(ctx, id); err != nil {
			h.log.Warn("failed to remove cv from search index", zap.Uint("cv_id", id), zap.Error(err))
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearch handles GET /api/cvs/search?q=&limit=
func (h *CVHandler) HandleSearch(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Search is not enabled",
		})
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}
	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 20 {
		limit = 5
	}

	hits, err := h.index.Search(c.UserContext(), query, limit)
	if err != nil {
		h.log.Warn("cv search failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	results := make([]fiber.Map, 0, len(hits))
	for _, hit := range hits {
		cv, err := h.cvRepo.FindByID(hit.CVID)
		if err != nil {
			// index entries can outlive their CV
			continue
		}
		results = append(results, fiber.Map{
			"id":        cv.ID,
			"full_name": cv.FullName(),
			"score":     hit.Score,
			"snippet":   hit.Snippet,
		})
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// HandleCollection is the single-function form of the list endpoint, used by /api/v1/cvs/.
func (h *CVHandler) HandleCollection(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return h.HandleList(c)
	case fiber.MethodPost:
		return h.HandleCreate(c)
	}
	return fiber.ErrMethodNotAllowed
}

// HandleItem is the single-function form of the detail endpoint, used by /api/v1/cvs/:id/.
func (h *CVHandler) HandleItem(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return h.HandleGet(c)
	case fiber.MethodPut:
		return h.HandleUpdate(c)
	case fiber.MethodDelete:
		return h.HandleDelete(c)
	}
	return fiber.ErrMethodNotAllowed
}

func (h *CVHandler) save(c *fiber.Ctx, cv *models.CV, input models.CVInput) error {
	if errs := input.Validate(); errs.HasErrors() {
		return validationJSON(c, errs)
	}

	input.ApplyTo(cv)
	if err := h.cvRepo.Update(cv); err != nil {
		if isNotFound(err) {
			return notFoundJSON(c)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update CV")
	}

	h.translations.Invalidate(cv.ID)
	h.reindex(c.UserContext(), cv.ID)
	return c.JSON(cv)
}

// lookup returns (nil, nil) when the CV does not exist.
func (h *CVHandler) lookup(c *fiber.Ctx) (*models.CV, error) {
	id, ok := parseID(c)
	if !ok {
		return nil, nil
	}

	cv, err := h.cvRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load CV")
	}
	return cv, nil
}

func (h *CVHandler) reindex(ctx context.Context, cvID uint) {
	if h.index == nil {
		return
	}
	if _, err := h.queue.Enqueue(ctx, services.JobIndexCV, services.CVPayload{CVID: cvID}); err != nil {
		h.log.Warn("index-cv not queued", zap.Uint("cv_id", cvID), zap.Error(err))
	}
}
