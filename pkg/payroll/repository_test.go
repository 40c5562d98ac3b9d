package payroll

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timesheet/internal/test_utils"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, *pgxpool.Pool, int) {
	if pgContainer == nil {
		t.Skip("database tests are skipped in short mode")
	}
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	u := test_utils.CreateTestUser(t, ctx, db, "ana")
	return ctx, NewRepository(db), db, u.Id
}

func insertEntry(t *testing.T, ctx context.Context, db *pgxpool.Pool, userId int) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx, `INSERT INTO timesheet_entry (uid, user_id, entry_date, work_type_id, quantity)
		SELECT $1, $2, DATE '2024-03-12', id, 8 FROM work_type WHERE code = '11_S' RETURNING id`,
		uuid.NewString(), userId).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestRepositoryImpl_StoreWorkedDays(t *testing.T) {
	t.Run("should link entries and list them", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		first := insertEntry(t, ctx, db, userId)
		second := insertEntry(t, ctx, db, userId)
		payslip, err := repo.CreatePayslip(ctx, userId, march())
		require.NoError(t, err)

		// when
		stored, err := repo.StoreWorkedDays(ctx, userId, WorkedDays{
			PayslipId: payslip.Id,
			Code:      "WORK100",
			Hours:     decimal.RequireFromString("16.5"),
			EntryIds:  []int{first, second},
		})

		// then
		require.NoError(t, err)
		list, err := repo.ListWorkedDays(ctx, userId, payslip.Id)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, stored.Id, list[0].Id)
		assert.Equal(t, "16.5", list[0].Hours.String())
		assert.ElementsMatch(t, []int{first, second}, list[0].EntryIds)
	})

	t.Run("should store nothing when an entry belongs to another user", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		other := test_utils.CreateTestUser(t, ctx, db, "bo")
		own := insertEntry(t, ctx, db, userId)
		foreign := insertEntry(t, ctx, db, other.Id)
		payslip, err := repo.CreatePayslip(ctx, userId, march())
		require.NoError(t, err)

		// when
		_, err = repo.StoreWorkedDays(ctx, userId, WorkedDays{
			PayslipId: payslip.Id,
			Code:      "WORK100",
			EntryIds:  []int{own, foreign},
		})

		// then
		assert.ErrorIs(t, err, ErrEntryNotAvailable)
		list, err := repo.ListWorkedDays(ctx, userId, payslip.Id)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("should not store worked days on payslip of another user", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		other := test_utils.CreateTestUser(t, ctx, db, "bo")
		payslip, err := repo.CreatePayslip(ctx, other.Id, march())
		require.NoError(t, err)

		// when
		_, err = repo.StoreWorkedDays(ctx, userId, WorkedDays{
			PayslipId: payslip.Id,
			Code:      "WORK100",
			EntryIds:  []int{insertEntry(t, ctx, db, userId)},
		})

		// then
		assert.ErrorIs(t, err, ErrPayslipNotFound)
	})
}

func TestRepositoryImpl_DeletePayslip(t *testing.T) {
	// given
	ctx, repo, db, userId := setupTestRepository(t)
	payslip, err := repo.CreatePayslip(ctx, userId, march())
	require.NoError(t, err)
	_, err = repo.StoreWorkedDays(ctx, userId, WorkedDays{
		PayslipId: payslip.Id,
		Code:      "WORK100",
		EntryIds:  []int{insertEntry(t, ctx, db, userId)},
	})
	require.NoError(t, err)

	// when
	deleted, err := repo.DeletePayslip(ctx, userId, payslip.Id)

	// then
	require.NoError(t, err)
	assert.True(t, deleted)
	var links int
	require.NoError(t, db.QueryRow(ctx, `SELECT count(*) FROM payslip_worked_days_entry`).Scan(&links))
	assert.Zero(t, links)
	_, err = repo.GetPayslip(ctx, userId, payslip.Id)
	assert.ErrorIs(t, err, ErrPayslipNotFound)
}
