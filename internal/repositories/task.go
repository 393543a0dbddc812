package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-project/internal/models"
)

type TaskRepository interface {
	Create(task *models.TaskRecord) error
	FindByID(id uuid.UUID) (*models.TaskRecord, error)
	Claim(id uuid.UUID) (bool, error)
	RequeueStale(before time.Time) (int64, error)
	UpdateResult(id uuid.UUID, result string) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.TaskRecord, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *models.TaskRecord) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(id uuid.UUID) (*models.TaskRecord, error) {
	var task models.TaskRecord
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Claim moves a queued task to processing. It reports false when another
// worker got there first or the task is no longer queued.
func (r *taskRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.TaskRecord{}).
		Where("id = ? AND status = ?", id, models.TaskQueued).
		Updates(map[string]interface{}{
			"status":     models.TaskProcessing,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim task: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// RequeueStale puts processing tasks last touched before the cutoff back in
// the queue. Tasks that finished in the meantime are not matched.
func (r *taskRepository) RequeueStale(before time.Time) (int64, error) {
	result := r.db.Model(&models.TaskRecord{}).
		Where("status = ? AND updated_at < ?", models.TaskProcessing, before.UTC()).
		Updates(map[string]interface{}{
			"status":     models.TaskQueued,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *taskRepository) UpdateResult(id uuid.UUID, result string) error {
	return r.update(id, map[string]interface{}{
		"status": models.TaskCompleted,
		"result": result,
	})
}

func (r *taskRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.TaskFailed,
		"error_message": errorMsg,
	})
}

func (r *taskRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()

	result := r.db.Model(&models.TaskRecord{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *taskRepository) FindPendingJobs(limit int) ([]models.TaskRecord, error) {
	var tasks []models.TaskRecord
	err := r.db.
		Where("status = ?", models.TaskQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return tasks, nil
}
