package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timesheet/pkg/work_type"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrEntryNotFound = errors.New("timesheet entry not found")

// CopyOverrides are the fields a copied entry gets instead of the source values.
type CopyOverrides struct {
	WorkType work_type.WorkType
	Quantity decimal.Decimal
	Label    string
}

type Repository interface {
	// WithTransaction runs fn with a repository bound to one transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise. Nested calls join the outer one.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEntry(ctx context.Context, userId int, entry Entry) (int, error)
	GetEntry(ctx context.Context, userId int, entryId int) (Entry, error)
	ListEntries(ctx context.Context, userId int, filter EntryFilter) ([]Entry, error)
	// UpdateEntry writes the mutable fields of an entry which is not in payroll. Returns false
	// when no such entry exists.
	UpdateEntry(ctx context.Context, userId int, entry Entry) (bool, error)
	// CopyEntry inserts a new entry carrying every field of the source except the overrides.
	CopyEntry(ctx context.Context, userId int, sourceId int, overrides CopyOverrides) (int, error)
	DeleteEntry(ctx context.Context, userId int, entryId int) (bool, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func NewRepository(pool *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{pool: pool, db: pool}
}

const entryColumns = `e.id, e.uid, e.user_id, e.entry_date, e.project_id, e.task_id, e.employee_id,
	w.id, w.code, w.name, w.food_included, e.quantity, e.label, pr.date_to`

// the payroll date comes from the first worked days record the entry is linked to
const entrySource = `FROM timesheet_entry e
	JOIN work_type w ON w.id = e.work_type_id
	LEFT JOIN LATERAL (
		SELECT p.date_to
		FROM payslip_worked_days_entry link
		JOIN payslip_worked_days wd ON wd.id = link.worked_days_id
		JOIN payslip p ON p.id = wd.payslip_id
		WHERE link.entry_id = e.id
		ORDER BY wd.id
		LIMIT 1
	) pr ON TRUE`

const notInPayroll = `NOT EXISTS (SELECT 1 FROM payslip_worked_days_entry link WHERE link.entry_id = timesheet_entry.id)`

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&RepositoryImpl{pool: r.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) StoreEntry(ctx context.Context, userId int, entry Entry) (int, error) {
	if entry.Uid == "" {
		entry.Uid = uuid.NewString()
	}
	query := `INSERT INTO timesheet_entry (uid, user_id, entry_date, project_id, task_id, employee_id,
			  work_type_id, quantity, label)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		entry.Uid,
		userId,
		pgtype.Date{Time: entry.Date, Valid: true},
		nullableId(entry.ProjectId),
		nullableId(entry.TaskId),
		nullableId(entry.EmployeeId),
		entry.WorkType.Id,
		entry.Quantity,
		entry.Label,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store timesheet entry: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetEntry(ctx context.Context, userId int, entryId int) (Entry, error) {
	query := `SELECT ` + entryColumns + ` ` + entrySource + ` WHERE e.id = $1 AND e.user_id = $2`
	if r.inTx {
		query += ` FOR UPDATE OF e`
	}
	entry, err := scanEntry(r.db.QueryRow(ctx, query, entryId, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		err := fmt.Errorf("could not get timesheet entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) ListEntries(ctx context.Context, userId int, filter EntryFilter) ([]Entry, error) {
	conditions := []string{"e.user_id = $1"}
	args := []any{userId}
	if !filter.From.IsZero() {
		args = append(args, pgtype.Date{Time: dateOnly(filter.From), Valid: true})
		conditions = append(conditions, fmt.Sprintf("e.entry_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, pgtype.Date{Time: dateOnly(filter.To), Valid: true})
		conditions = append(conditions, fmt.Sprintf("e.entry_date <= $%d", len(args)))
	}
	if filter.Payroll != nil {
		condition, conditionArgs := filter.Payroll.condition("pr.date_to", len(args)+1)
		args = append(args, conditionArgs...)
		conditions = append(conditions, condition)
	}

	query := `SELECT ` + entryColumns + ` ` + entrySource +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY e.entry_date, e.id`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query timesheet entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}

func (r *RepositoryImpl) UpdateEntry(ctx context.Context, userId int, entry Entry) (bool, error) {
	query := `UPDATE timesheet_entry SET
				entry_date = $3,
				project_id = $4,
				task_id = $5,
				employee_id = $6,
				work_type_id = $7,
				quantity = $8,
				label = $9
			  WHERE id = $1 AND user_id = $2 AND ` + notInPayroll
	result, err := r.db.Exec(ctx, query,
		entry.Id,
		userId,
		pgtype.Date{Time: entry.Date, Valid: true},
		nullableId(entry.ProjectId),
		nullableId(entry.TaskId),
		nullableId(entry.EmployeeId),
		entry.WorkType.Id,
		entry.Quantity,
		entry.Label,
	)
	if err != nil {
		err := fmt.Errorf("could not update timesheet entry: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) CopyEntry(ctx context.Context, userId int, sourceId int, overrides CopyOverrides) (int, error) {
	query := `INSERT INTO timesheet_entry (uid, user_id, entry_date, project_id, task_id, employee_id,
			  work_type_id, quantity, label)
			  SELECT $3, user_id, entry_date, project_id, task_id, employee_id, $4, $5, $6
			  FROM timesheet_entry WHERE id = $1 AND user_id = $2
			  RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		sourceId,
		userId,
		uuid.NewString(),
		overrides.WorkType.Id,
		overrides.Quantity,
		overrides.Label,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrEntryNotFound
		}
		err := fmt.Errorf("could not copy timesheet entry: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) DeleteEntry(ctx context.Context, userId int, entryId int) (bool, error) {
	query := `DELETE FROM timesheet_entry WHERE id = $1 AND user_id = $2 AND ` + notInPayroll
	result, err := r.db.Exec(ctx, query, entryId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete timesheet entry: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		entry      Entry
		entryDate  pgtype.Date
		projectId  sql.NullInt64
		taskId     sql.NullInt64
		employeeId sql.NullInt64
		inPayroll  pgtype.Date
	)
	err := row.Scan(
		&entry.Id,
		&entry.Uid,
		&entry.UserId,
		&entryDate,
		&projectId,
		&taskId,
		&employeeId,
		&entry.WorkType.Id,
		&entry.WorkType.Code,
		&entry.WorkType.Name,
		&entry.WorkType.FoodIncluded,
		&entry.Quantity,
		&entry.Label,
		&inPayroll,
	)
	if err != nil {
		return Entry{}, err
	}
	entry.Date = entryDate.Time
	entry.ProjectId = int(projectId.Int64)
	entry.TaskId = int(taskId.Int64)
	entry.EmployeeId = int(employeeId.Int64)
	if inPayroll.Valid {
		date := dateOnly(inPayroll.Time)
		entry.InPayroll = &date
	}
	return entry, nil
}

func nullableId(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
