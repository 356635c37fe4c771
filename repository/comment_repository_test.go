package repository

import (
	"context"
	"testing"
	"time"

	"resonate/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentBumpsCounterInSameTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO comments").
		WithArgs(int64(7), int64(3), "bob", "nice track", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectExec("UPDATE tracks SET comments = comments \\+ 1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewMySQLCommentRepository(db)
	comment := &model.Comment{TrackID: 7, UserID: 3, Username: "bob", Content: "nice track"}
	id, err := repo.CreateComment(context.Background(), comment)
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)
	assert.Equal(t, int64(15), comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentRollsBackOnCounterFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO comments").
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectExec("UPDATE tracks SET comments = comments \\+ 1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewMySQLCommentRepository(db)
	_, err = repo.CreateComment(context.Background(), &model.Comment{TrackID: 7, UserID: 3})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRecentByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM comments").
		WithArgs(int64(3), since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	repo := NewMySQLCommentRepository(db)
	count, err := repo.CountRecentByUser(context.Background(), 3, since)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
