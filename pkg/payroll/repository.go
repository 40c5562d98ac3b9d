package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrPayslipNotFound = errors.New("payslip not found")
var ErrEntryNotAvailable = errors.New("timesheet entry not found")

type Repository interface {
	CreatePayslip(ctx context.Context, userId int, payslip Payslip) (Payslip, error)
	GetPayslip(ctx context.Context, userId int, payslipId int) (Payslip, error)
	DeletePayslip(ctx context.Context, userId int, payslipId int) (bool, error)
	StoreWorkedDays(ctx context.Context, userId int, workedDays WorkedDays) (WorkedDays, error)
	ListWorkedDays(ctx context.Context, userId int, payslipId int) ([]WorkedDays, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreatePayslip(ctx context.Context, userId int, payslip Payslip) (Payslip, error) {
	query := `INSERT INTO payslip (user_id, employee_id, name, date_from, date_to)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		userId,
		payslip.EmployeeId,
		payslip.Name,
		pgtype.Date{Time: payslip.DateFrom, Valid: true},
		pgtype.Date{Time: payslip.DateTo, Valid: true},
	).Scan(&payslip.Id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Payslip{}, err
	}
	return payslip, nil
}

func (r *RepositoryImpl) GetPayslip(ctx context.Context, userId int, payslipId int) (Payslip, error) {
	query := `SELECT id, employee_id, name, date_from, date_to FROM payslip WHERE id = $1 AND user_id = $2`
	var (
		payslip  Payslip
		dateFrom pgtype.Date
		dateTo   pgtype.Date
	)
	err := r.db.QueryRow(ctx, query, payslipId, userId).
		Scan(&payslip.Id, &payslip.EmployeeId, &payslip.Name, &dateFrom, &dateTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payslip{}, ErrPayslipNotFound
		}
		err := fmt.Errorf("could not get payslip: %w", err)
		log.Error(err)
		return Payslip{}, err
	}
	payslip.DateFrom = dateFrom.Time
	payslip.DateTo = dateTo.Time
	return payslip, nil
}

func (r *RepositoryImpl) DeletePayslip(ctx context.Context, userId int, payslipId int) (bool, error) {
	query := `DELETE FROM payslip WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, payslipId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) StoreWorkedDays(ctx context.Context, userId int, workedDays WorkedDays) (WorkedDays, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return WorkedDays{}, err
	}
	defer tx.Rollback(ctx)

	var owned bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payslip WHERE id = $1 AND user_id = $2)`,
		workedDays.PayslipId, userId).Scan(&owned)
	if err != nil {
		err := fmt.Errorf("could not check payslip: %w", err)
		log.Error(err)
		return WorkedDays{}, err
	}
	if !owned {
		return WorkedDays{}, ErrPayslipNotFound
	}

	query := `INSERT INTO payslip_worked_days (payslip_id, code, hours) VALUES ($1, $2, $3) RETURNING id`
	err = tx.QueryRow(ctx, query, workedDays.PayslipId, workedDays.Code, workedDays.Hours).Scan(&workedDays.Id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return WorkedDays{}, err
	}

	linkQuery := `INSERT INTO payslip_worked_days_entry (worked_days_id, entry_id)
				  SELECT $1, e.id FROM timesheet_entry e WHERE e.id = ANY($2) AND e.user_id = $3`
	result, err := tx.Exec(ctx, linkQuery, workedDays.Id, workedDays.EntryIds, userId)
	if err != nil {
		err := fmt.Errorf("could not link timesheet entries: %w", err)
		log.Error(err)
		return WorkedDays{}, err
	}
	if int(result.RowsAffected()) != len(workedDays.EntryIds) {
		return WorkedDays{}, ErrEntryNotAvailable
	}

	if err := tx.Commit(ctx); err != nil {
		return WorkedDays{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return workedDays, nil
}

func (r *RepositoryImpl) ListWorkedDays(ctx context.Context, userId int, payslipId int) ([]WorkedDays, error) {
	query := `SELECT wd.id, wd.payslip_id, wd.code, wd.hours, COALESCE(array_agg(link.entry_id ORDER BY link.entry_id)
					FILTER (WHERE link.entry_id IS NOT NULL), '{}')
			  FROM payslip_worked_days wd
			  JOIN payslip p ON p.id = wd.payslip_id
			  LEFT JOIN payslip_worked_days_entry link ON link.worked_days_id = wd.id
			  WHERE p.id = $1 AND p.user_id = $2
			  GROUP BY wd.id, wd.payslip_id, wd.code, wd.hours
			  ORDER BY wd.id`
	rows, err := r.db.Query(ctx, query, payslipId, userId)
	if err != nil {
		err := fmt.Errorf("could not query worked days: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var result []WorkedDays
	for rows.Next() {
		var wd WorkedDays
		var entryIds []int32
		if err := rows.Scan(&wd.Id, &wd.PayslipId, &wd.Code, &wd.Hours, &entryIds); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		for _, id := range entryIds {
			wd.EntryIds = append(wd.EntryIds, int(id))
		}
		result = append(result, wd)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return result, nil
}
