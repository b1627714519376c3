package task

import (
	"context"
	"errors"

	domain "github.com/example/task-board/domain/task"
	"gorm.io/gorm"
)

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByID finds a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssigneeID != "" {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}

	var tasks []domain.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update loads the task, lets mutate compute its next state and saves it, all
// in one transaction. Nothing is written when mutate fails.
func (r *TaskRepository) Update(ctx context.Context, id string, mutate func(*domain.Task) (domain.Task, error)) (*domain.Task, error) {
	var updated domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findForUpdate(tx, id)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}

		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete loads the task, checks it with authorize and hard-deletes it, all in
// one transaction. The deleted task is returned.
func (r *TaskRepository) Delete(ctx context.Context, id string, authorize func(*domain.Task) error) (*domain.Task, error) {
	var deleted *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := authorize(current); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Task{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Count returns the number of stored tasks.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func findForUpdate(tx *gorm.DB, id string) (*domain.Task, error) {
	var t domain.Task
	if err := tx.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}
