package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/taskloom/taskloom-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewTaskRepository(db), mock
}

func taskRows(tasks ...models.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "start_time", "end_time", "priority", "status", "owner_id",
		"created_at", "updated_at", "deleted_at",
	})
	for _, task := range tasks {
		rows.AddRow(task.ID, task.Title, task.StartTime, task.EndTime, task.Priority,
			task.Status, task.OwnerID, task.CreatedAt, task.UpdatedAt, nil)
	}
	return rows
}

func TestList_FiltersByOwnerAndStatus(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now()
	status := models.TaskStatusPending

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE tasks\.owner_id = .+ AND tasks\.status = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE tasks\.owner_id = .+ AND tasks\.status = .+ORDER BY tasks\.created_at DESC`).
		WillReturnRows(taskRows(models.Task{
			ID:        1,
			Title:     "pending task",
			StartTime: now,
			EndTime:   now.Add(time.Hour),
			Priority:  3,
			Status:    status,
			OwnerID:   7,
		}))

	tasks, total, err := repo.List(TaskFilter{
		OwnerID: 7,
		Status:  &status,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, tasks, 1)
	require.Equal(t, "pending task", tasks[0].Title)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_AppliesSortClause(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE tasks\.owner_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE tasks\.owner_id = .+ORDER BY tasks\.start_time DESC`).
		WillReturnRows(taskRows())

	_, _, err := repo.List(TaskFilter{
		OwnerID: 7,
		OrderBy: "tasks.start_time DESC",
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_AppliesPagination(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE tasks\.owner_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE tasks\.owner_id = .+LIMIT .+OFFSET .+`).
		WillReturnRows(taskRows())

	_, total, err := repo.List(TaskFilter{
		OwnerID:  7,
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), total)

	require.NoError(t, mock.ExpectationsWereMet())
}
