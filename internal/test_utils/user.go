package test_utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timesheet/pkg/user"
	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user row so that rows referencing users can be stored.
func CreateTestUser(t *testing.T, ctx context.Context, db *pgxpool.Pool, username string) user.User {
	t.Helper()
	u := user.User{
		Uid:         uuid.NewString(),
		Username:    username,
		DisplayName: "Test User",
	}
	id, err := user.NewUserRepo(db).CreateUser(ctx, u)
	require.NoError(t, err)
	u.Id = id
	return u
}
