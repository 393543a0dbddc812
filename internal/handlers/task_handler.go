package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
)

const unavailableTaskID = "unavailable"

type TaskHandler struct {
	taskRepo        repositories.TaskRepository
	cvRepo          repositories.CVRepository
	queue           services.JobQueue
	reportRecipient string
	log             *zap.Logger
}

func NewTaskHandler(
	taskRepo repositories.TaskRepository,
	cvRepo repositories.CVRepository,
	queue services.JobQueue,
	reportRecipient string,
	log *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:        taskRepo,
		cvRepo:          cvRepo,
		queue:           queue,
		reportRecipient: reportRecipient,
		log:             log,
	}
}

// HandleTrigger handles GET /api/tasks/trigger/?task=...
//
// It always answers 200. A queue that cannot take the job still reports success
// with task_id "unavailable"; status is "error" only for bad input.
func (h *TaskHandler) HandleTrigger(c *fiber.Ctx) error {
	jobType := c.Query("task", services.JobTest)
	if !services.IsPublicJob(jobType) {
		return c.JSON(models.TaskTriggerResponse{
			Status:  "error",
			Message: fmt.Sprintf("Unknown task: %s", jobType),
		})
	}

	payload, errMsg := h.buildPayload(c, jobType)
	if errMsg != "" {
		return c.JSON(models.TaskTriggerResponse{
			Status:  "error",
			Message: errMsg,
		})
	}

	handle, err := h.queue.Enqueue(c.UserContext(), jobType, payload)
	if err != nil {
		if !errors.Is(err, services.ErrQueueUnavailable) {
			h.log.Warn("task dispatch failed", zap.String("task", jobType), zap.Error(err))
		}
		taskID := unavailableTaskID
		return c.JSON(models.TaskTriggerResponse{
			Status:  "success",
			Message: fmt.Sprintf("Task '%s' triggered (worker unavailable, it was not queued)", jobType),
			TaskID:  &taskID,
		})
	}

	taskID := handle.String()
	return c.JSON(models.TaskTriggerResponse{
		Status:  "success",
		Message: fmt.Sprintf("Task '%s' triggered successfully", jobType),
		TaskID:  &taskID,
	})
}

// HandleGetTask handles GET /api/tasks/:id
func (h *TaskHandler) HandleGetTask(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID format",
		})
	}

	task, err := h.taskRepo.FindByID(taskID)
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Task not found",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load task")
	}

	return c.JSON(models.TaskStatusResponse{
		ID:           task.ID.String(),
		Type:         task.Type,
		Status:       task.Status,
		Result:       task.Result,
		ErrorMessage: task.ErrorMessage,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	})
}

// buildPayload returns the job payload, or a message explaining why the job cannot run.
func (h *TaskHandler) buildPayload(c *fiber.Ctx, jobType string) (interface{}, string) {
	email := c.Query("email", h.reportRecipient)

	switch jobType {
	case services.JobSendEmail:
		return services.EmailPayload{
			Subject:    c.Query("subject", "Test Email from CV Project"),
			Message:    c.Query("message", "This is a test email sent from a background task."),
			Recipients: []string{email},
		}, ""

	case services.JobSendCVNotification:
		cv, msg := h.resolveCV(c)
		if cv == nil {
			return nil, msg
		}
		return services.CVNotificationPayload{CVID: cv.ID, RecipientEmail: email}, ""

	case services.JobGeneratePDF:
		cv, msg := h.resolveCV(c)
		if cv == nil {
			return nil, msg
		}
		return services.CVPayload{CVID: cv.ID}, ""
	}

	return nil, ""
}

// resolveCV picks the CV named by ?cv_id=, or the newest one.
func (h *TaskHandler) resolveCV(c *fiber.Ctx) (*models.CV, string) {
	raw := c.Query("cv_id")
	if raw == "" {
		cv, err := h.cvRepo.Latest()
		if err != nil {
			return nil, "No CV found. Please create a CV first."
		}
		return cv, ""
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Sprintf("Invalid cv_id: %s", raw)
	}
	cv, err := h.cvRepo.FindByID(uint(id))
	if err != nil {
		return nil, fmt.Sprintf("CV with ID %d not found", id)
	}
	return cv, ""
}
