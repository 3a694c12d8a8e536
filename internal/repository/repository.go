package repository

import (
	"github.com/taskloom/taskloom-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks matching the filter with pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// FindAllByOwner retrieves every task owned by a user
	FindAllByOwner(ownerID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering, sorting and pagination options for listing tasks
type TaskFilter struct {
	OwnerID  uint64
	Status   *models.TaskStatus
	Priority *int
	OrderBy  string
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
