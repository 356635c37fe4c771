package repository

import (
	"context"
	"testing"

	"resonate/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPendingBetweenChecksBothDirections(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM friend_requests").
		WithArgs(int64(1), int64(2), int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	repo := NewMySQLFriendRepository(db)
	pending, err := repo.HasPendingBetween(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPendingBetweenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM friend_requests").
		WithArgs(int64(1), int64(2), int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewMySQLFriendRepository(db)
	pending, err := repo.HasPendingBetween(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestAcceptRequestCommitsBothWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE friend_requests SET status = \\?").
		WithArgs(string(model.FriendRequestAccepted), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO friendships").
		WithArgs(int64(1), "alice", int64(2), "bob", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	repo := NewMySQLFriendRepository(db)
	friendship := &model.Friendship{
		User1ID: 1, User1Username: "alice",
		User2ID: 2, User2Username: "bob",
	}
	require.NoError(t, repo.AcceptRequest(context.Background(), 11, friendship))
	assert.Equal(t, int64(42), friendship.ID)
	assert.False(t, friendship.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequestRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE friend_requests SET status = \\?").
		WithArgs(string(model.FriendRequestAccepted), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO friendships").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewMySQLFriendRepository(db)
	err = repo.AcceptRequest(context.Background(), 11, &model.Friendship{
		User1ID: 1, User1Username: "alice",
		User2ID: 2, User2Username: "bob",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRequestByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM friend_requests WHERE id = ?").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewMySQLFriendRepository(db)
	req, err := repo.GetRequestByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, req, "missing request returns nil, nil")
}
