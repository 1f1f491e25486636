package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minase/task-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// TestReplaceAssignments_DeleteThenInsert verifies that replacement runs as a
// single transaction: the old rows are removed and the new set inserted with
// no commit in between.
func TestReplaceAssignments_DeleteThenInsert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewTaskRepository(gormDB)

	assignments := []models.TaskAssignment{
		{UserID: 2, AssignedAt: time.Now(), CreatedByID: 1},
		{UserID: 3, AssignedAt: time.Now(), CreatedByID: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_assignments` WHERE task_id = ?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `task_assignments`")).
		WillReturnResult(sqlmock.NewResult(10, 2))
	mock.ExpectCommit()

	err := repo.ReplaceAssignments(7, assignments)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestReplaceAssignments_EmptySetClears: an empty replacement set only
// deletes, leaving the task unassigned.
func TestReplaceAssignments_EmptySetClears(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_assignments` WHERE task_id = ?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.ReplaceAssignments(7, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestReplaceAssignments_RollbackOnInsertFailure verifies that a failed
// insert rolls the delete back, so the previous assignment set survives.
func TestReplaceAssignments_RollbackOnInsertFailure(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_assignments` WHERE task_id = ?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `task_assignments`")).
		WillReturnError(gorm.ErrInvalidData)
	mock.ExpectRollback()

	err := repo.ReplaceAssignments(7, []models.TaskAssignment{{UserID: 2}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestDelete_RemovesDependentRows verifies that deleting a task clears its
// assignments and tag links in the same transaction.
func TestDelete_RemovesDependentRows(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_assignments` WHERE task_id = ?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_tags`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `tasks` WHERE `tasks`.`id` = ?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestCountChildren queries the parent reference count used by the
// protected-delete check.
func TestCountChildren(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewTaskRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `tasks` WHERE sub_task_id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	count, err := repo.CountChildren(7)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
