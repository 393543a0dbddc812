package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

const (
	recentLogsLimit = 10
	logsPageSize    = 20
)

type LogHandler struct {
	logRepo repositories.RequestLogRepository
}

func NewLogHandler(logRepo repositories.RequestLogRepository) *LogHandler {
	return &LogHandler{logRepo: logRepo}
}

// HandleListLogs handles GET /api/logs/?page=
func (h *LogHandler) HandleListLogs(c *fiber.Ctx) error {
	page := pageParam(c)

	logs, total, err := h.logRepo.ListPage(page, logsPageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list request logs")
	}
	if logs == nil {
		logs = []models.RequestLog{}
	}

	return c.JSON(models.PageResponse[models.RequestLog]{
		Count:    total,
		Page:     page,
		PageSize: logsPageSize,
		Results:  logs,
	})
}
