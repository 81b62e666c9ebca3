package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (domain.Repository, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&domain.OperationLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Provide(conn), node
}

func insertLog(t *testing.T, repo domain.Repository, node *snowflake.Node, operation string, success bool, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &domain.OperationLog{
		ID:         node.Generate(),
		Operation:  operation,
		Success:    success,
		TargetType: "line_item",
		CreatedAt:  at,
	}))
}

func TestListFilters(t *testing.T) {
	repo, node := setupRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	insertLog(t, repo, node, "record_usage", true, base)
	insertLog(t, repo, node, "record_usage", false, base.Add(time.Hour))
	insertLog(t, repo, node, "record_return", true, base.Add(2*time.Hour))

	logs, total, err := repo.List(ctx, domain.ListRequest{Operation: "record_usage"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)
	// Newest first.
	assert.False(t, logs[0].Success)

	success := true
	logs, total, err = repo.List(ctx, domain.ListRequest{Success: &success})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, row := range logs {
		assert.True(t, row.Success)
	}

	from := base.Add(90 * time.Minute)
	logs, total, err = repo.List(ctx, domain.ListRequest{StartAt: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "record_return", logs[0].Operation)
}

func TestListPaginates(t *testing.T) {
	repo, node := setupRepo(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertLog(t, repo, node, "record_usage", true, base.Add(time.Duration(i)*time.Minute))
	}

	logs, total, err := repo.List(context.Background(), domain.ListRequest{
		Pagination: pagination.Pagination{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, logs, 2)
}

func TestInsertNilIsNoop(t *testing.T) {
	repo, _ := setupRepo(t)
	assert.NoError(t, repo.Insert(context.Background(), nil))
}
