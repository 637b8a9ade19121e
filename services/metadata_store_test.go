package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filekeeper/models"
)

func TestGetLiveExcludesSoftDeleted(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))
	ctx := context.Background()

	file := models.NewFile("a.txt", "s3://b/a.txt", "b", "text/plain", 1)
	require.NoError(t, store.Create(ctx, file))

	live, err := store.GetLive(ctx, "b", "a.txt")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, file.ID, live.ID)

	_, err = store.MarkDeleted(ctx, []string{file.ID}, time.Now().UTC())
	require.NoError(t, err)

	live, err = store.GetLive(ctx, "b", "a.txt")
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestGetLiveMatchesBucketAndName(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))
	ctx := context.Background()

	file := models.NewFile("a.txt", "s3://b/a.txt", "b", "text/plain", 1)
	require.NoError(t, store.Create(ctx, file))

	// 桶不同视为不同文件
	live, err := store.GetLive(ctx, "other-bucket", "a.txt")
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestFindExpiredPredicate(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	expired := models.NewFile("old.txt", "s3://b/old.txt", "b", "text/plain", 1)
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, store.Create(ctx, expired))

	fresh := models.NewFile("new.txt", "s3://b/new.txt", "b", "text/plain", 1)
	require.NoError(t, store.Create(ctx, fresh))

	gone := models.NewFile("gone.txt", "s3://b/gone.txt", "b", "text/plain", 1)
	gone.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, store.Create(ctx, gone))
	_, err := store.MarkDeleted(ctx, []string{gone.ID}, now)
	require.NoError(t, err)

	// 只返回已过期且未软删除的
	files, err := store.FindExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, expired.ID, files[0].ID)
}

func TestMarkDeletedIsMonotonic(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))
	ctx := context.Background()

	file := models.NewFile("a.txt", "s3://b/a.txt", "b", "text/plain", 1)
	require.NoError(t, store.Create(ctx, file))

	first := time.Now().UTC().Truncate(time.Second)
	n, err := store.MarkDeleted(ctx, []string{file.ID}, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 第二次标记不影响任何行，deleted_at 一经写入不再改变
	n, err = store.MarkDeleted(ctx, []string{file.ID}, first.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	files, err := store.GetByIDs(ctx, []string{file.ID})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotNil(t, files[0].DeletedAt)
	assert.WithinDuration(t, first, *files[0].DeletedAt, time.Second)
	assert.Equal(t, models.FileStatusDeleted, files[0].Status)
}

func TestMarkDeletedEmptyIDs(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))

	n, err := store.MarkDeleted(context.Background(), nil, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	store := NewGormMetadataStore(newTestDB(t))
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx MetadataStore) error {
		file := models.NewFile("tx.txt", "s3://b/tx.txt", "b", "text/plain", 1)
		if err := tx.Create(ctx, file); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	// 事务失败后记录不可见
	live, err := store.GetLive(ctx, "b", "tx.txt")
	require.NoError(t, err)
	assert.Nil(t, live)
}
