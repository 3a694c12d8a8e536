package dto

import (
	"github.com/taskloom/taskloom-api/internal/models"
	"github.com/taskloom/taskloom-api/internal/utils"
)

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []models.Task            `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskListResponse assembles a paginated task list
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	if tasks == nil {
		tasks = []models.Task{}
	}

	return TaskListResponse{
		Tasks: tasks,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
			Pages: utils.PageCount(total, params.Limit),
		},
	}
}
