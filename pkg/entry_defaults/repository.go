package entry_defaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrDefaultsNotFound = errors.New("entry defaults not found")

type Repository interface {
	GetDefaults(ctx context.Context, userId int) (Defaults, error)
	StoreDefaults(ctx context.Context, userId int, defaults Defaults) error
	// AdvanceDate sets the default date when the user has defaults stored. Returns false otherwise.
	AdvanceDate(ctx context.Context, userId int, date time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetDefaults(ctx context.Context, userId int) (Defaults, error) {
	query := `SELECT project_id, task_id, entry_date, employee_id, work_type_id, unit_amount
			  FROM entry_defaults WHERE user_id = $1`

	var (
		projectId  sql.NullInt64
		taskId     sql.NullInt64
		entryDate  pgtype.Date
		employeeId sql.NullInt64
		workTypeId sql.NullInt64
		defaults   Defaults
	)
	err := r.db.QueryRow(ctx, query, userId).Scan(
		&projectId,
		&taskId,
		&entryDate,
		&employeeId,
		&workTypeId,
		&defaults.UnitAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults{}, ErrDefaultsNotFound
		}
		err := fmt.Errorf("could not get entry defaults: %w", err)
		log.Error(err)
		return Defaults{}, err
	}

	defaults.ProjectId = int(projectId.Int64)
	defaults.TaskId = int(taskId.Int64)
	defaults.EmployeeId = int(employeeId.Int64)
	defaults.WorkTypeId = int(workTypeId.Int64)
	if entryDate.Valid {
		defaults.Date = entryDate.Time
	}
	return defaults, nil
}

func (r *RepositoryImpl) StoreDefaults(ctx context.Context, userId int, defaults Defaults) error {
	query := `INSERT INTO entry_defaults (user_id, project_id, task_id, entry_date, employee_id, work_type_id, unit_amount)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (user_id) DO UPDATE SET
				project_id = EXCLUDED.project_id,
				task_id = EXCLUDED.task_id,
				entry_date = EXCLUDED.entry_date,
				employee_id = EXCLUDED.employee_id,
				work_type_id = EXCLUDED.work_type_id,
				unit_amount = EXCLUDED.unit_amount`

	_, err := r.db.Exec(ctx, query,
		userId,
		nullableId(defaults.ProjectId),
		nullableId(defaults.TaskId),
		pgtype.Date{Time: defaults.Date, Valid: !defaults.Date.IsZero()},
		nullableId(defaults.EmployeeId),
		nullableId(defaults.WorkTypeId),
		defaults.UnitAmount,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) AdvanceDate(ctx context.Context, userId int, date time.Time) (bool, error) {
	query := `UPDATE entry_defaults SET entry_date = $1 WHERE user_id = $2`
	result, err := r.db.Exec(ctx, query, pgtype.Date{Time: date, Valid: true}, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func nullableId(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
