package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreReplaceKeepsOneRow(t *testing.T) {
	db := dbtest.Open(t)
	store := NewTokenStore(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.Replace(ctx, "alice", "first", exp))
	require.NoError(t, store.Replace(ctx, "alice", "second", exp.Add(time.Hour)))
	require.NoError(t, store.Replace(ctx, "bob", "bobs", exp))

	var rows []models.AuthToken
	require.NoError(t, db.Unscoped().Where("user_id = ?", "alice").Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "second", rows[0].Token)
	require.WithinDuration(t, exp.Add(time.Hour), rows[0].ExpiresAt, time.Second)

	_, err := store.FindByToken(ctx, "first")
	require.Error(t, err)
	row, err := store.FindByToken(ctx, "bobs")
	require.NoError(t, err)
	require.Equal(t, "bob", row.UserID)
}

func TestTokenStoreRejectsSecondRowForUser(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	require.NoError(t, NewTokenStore(db).Replace(ctx, "alice", "first", time.Now().Add(time.Hour)))

	err := db.Create(&models.AuthToken{
		ID:        uuid.New(),
		UserID:    "alice",
		Token:     "second",
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error
	require.Error(t, err)
}

func TestTokenStoreConcurrentReplace(t *testing.T) {
	db := dbtest.Open(t)
	store := NewTokenStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Replace(ctx, "alice", fmt.Sprintf("token-%d", i), time.Now().Add(time.Hour))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, db.Unscoped().Model(&models.AuthToken{}).Where("user_id = ?", "alice").Count(&n).Error)
	require.Equal(t, int64(1), n)
}

func TestTokenStoreDeleteByID(t *testing.T) {
	db := dbtest.Open(t)
	store := NewTokenStore(db)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, "alice", "a", time.Now().Add(time.Hour)))
	require.NoError(t, store.Replace(ctx, "bob", "b", time.Now().Add(time.Hour)))

	row, err := store.FindByToken(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, row.ID))

	ok, err := store.HasSession(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = store.HasSession(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
}
