package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/cv-project/internal/models"
)

type CVRepository interface {
	Create(cv *models.CV) error
	FindByID(id uint) (*models.CV, error)
	List(page, pageSize int) ([]models.CV, int64, error)
	ListAll() ([]models.CV, error)
	Latest() (*models.CV, error)
	Update(cv *models.CV) error
	Delete(id uint) error
	Count() (int64, error)
}

type cvRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) CVRepository {
	return &cvRepository{db: db}
}

// Create implements CVRepository. Timestamps are always server-set.
func (r *cvRepository) Create(cv *models.CV) error {
	now := time.Now().UTC()
	cv.ID = 0
	cv.CreatedAt = now
	cv.UpdatedAt = now

	if err := r.db.Create(cv).Error; err != nil {
		return fmt.Errorf("failed to create cv: %w", err)
	}
	return nil
}

// FindByID implements CVRepository.
func (r *cvRepository) FindByID(id uint) (*models.CV, error) {
	var cv models.CV
	if err := r.db.Where("id = ?", id).First(&cv).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("cv %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cv: %w", err)
	}
	return &cv, nil
}

// List implements CVRepository, newest first.
func (r *cvRepository) List(page, pageSize int) ([]models.CV, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := r.db.Model(&models.CV{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cvs: %w", err)
	}

	var cvs []models.CV
	err := r.db.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cvs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cvs: %w", err)
	}

	return cvs, total, nil
}

// ListAll implements CVRepository.
func (r *cvRepository) ListAll() ([]models.CV, error) {
	var cvs []models.CV
	if err := r.db.Order("created_at DESC").Order("id DESC").Find(&cvs).Error; err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	return cvs, nil
}

// Latest implements CVRepository.
func (r *cvRepository) Latest() (*models.CV, error) {
	var cv models.CV
	err := r.db.Order("created_at DESC").Order("id DESC").First(&cv).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("no cvs: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find latest cv: %w", err)
	}
	return &cv, nil
}

// Update implements CVRepository. created_at is never written; updated_at is refreshed
// and never moves before created_at.
func (r *cvRepository) Update(cv *models.CV) error {
	now := time.Now().UTC()
	if now.Before(cv.CreatedAt) {
		now = cv.CreatedAt
	}
	cv.UpdatedAt = now

	result := r.db.Model(&models.CV{}).
		Where("id = ?", cv.ID).
		Updates(map[string]interface{}{
			"firstname":  cv.Firstname,
			"lastname":   cv.Lastname,
			"skills":     cv.Skills,
			"projects":   cv.Projects,
			"bio":        cv.Bio,
			"contacts":   cv.Contacts,
			"updated_at": cv.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update cv: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cv %d: %w", cv.ID, ErrNotFound)
	}
	return nil
}

// Delete implements CVRepository.
func (r *cvRepository) Delete(id uint) error {
	result := r.db.Delete(&models.CV{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete cv: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cv %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count implements CVRepository.
func (r *cvRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.CV{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count cvs: %w", err)
	}
	return total, nil
}
