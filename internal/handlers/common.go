package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// parseID reads a positive integer route param. Anything else is treated as a
// missing resource.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParam(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 1
	}
	return page
}

func pageSizeParam(c *fiber.Ctx) int {
	size := c.QueryInt("page_size", defaultPageSize)
	switch {
	case size < 1:
		return defaultPageSize
	case size > maxPageSize:
		return maxPageSize
	}
	return size
}

func totalPages(count int64, pageSize int) int {
	if count == 0 {
		return 1
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

func notFoundJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Not found.",
	})
}

func validationJSON(c *fiber.Ctx, errs models.ValidationErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": errs.Fields(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
