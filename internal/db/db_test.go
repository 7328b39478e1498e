package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	ctx := context.Background()
	_, ok, err := db.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.SetAll(ctx, map[string]string{"auth_token": "t1", "auth_user": `{"id":1}`}))
	require.NoError(t, db.SetAll(ctx, map[string]string{"auth_token": "t2"}))

	v, ok, err := db.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t2", v)

	require.NoError(t, db.DeleteAll(ctx, "auth_token", "auth_user"))
	_, ok, err = db.Get(ctx, "auth_user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SetAll(context.Background(), map[string]string{"k": "v"}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := db.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSetAll_RollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = New(sqlDB).SetAll(context.Background(), map[string]string{"auth_token": "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_ReadError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("SELECT value FROM kv").WithArgs("auth_user").WillReturnError(errors.New("locked"))

	_, ok, err := New(sqlDB).Get(context.Background(), "auth_user")
	require.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAll_CommitFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM kv").WithArgs("auth_token").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("busy"))

	err = New(sqlDB).DeleteAll(context.Background(), "auth_token")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
