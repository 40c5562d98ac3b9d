package work_type

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrWorkTypeNotFound = errors.New("work type not found")
var ErrWorkTypeCodeTaken = errors.New("work type code already exists")

const uniqueViolation = "23505"

type Repository interface {
	ListWorkTypes(ctx context.Context) ([]WorkType, error)
	GetWorkType(ctx context.Context, id int) (WorkType, error)
	GetWorkTypeByCode(ctx context.Context, code string) (WorkType, error)
	StoreWorkType(ctx context.Context, workType WorkType) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListWorkTypes(ctx context.Context) ([]WorkType, error) {
	query := `SELECT id, code, name, food_included FROM work_type ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query work types: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var types []WorkType
	for rows.Next() {
		var wt WorkType
		if err := rows.Scan(&wt.Id, &wt.Code, &wt.Name, &wt.FoodIncluded); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		types = append(types, wt)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return types, nil
}

func (r *RepositoryImpl) GetWorkType(ctx context.Context, id int) (WorkType, error) {
	query := `SELECT id, code, name, food_included FROM work_type WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetWorkTypeByCode matches the code exactly.
func (r *RepositoryImpl) GetWorkTypeByCode(ctx context.Context, code string) (WorkType, error) {
	query := `SELECT id, code, name, food_included FROM work_type WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *RepositoryImpl) getOne(ctx context.Context, query string, arg any) (WorkType, error) {
	var wt WorkType
	err := r.db.QueryRow(ctx, query, arg).Scan(&wt.Id, &wt.Code, &wt.Name, &wt.FoodIncluded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkType{}, ErrWorkTypeNotFound
		}
		err := fmt.Errorf("could not get work type: %w", err)
		log.Error(err)
		return WorkType{}, err
	}
	return wt, nil
}

func (r *RepositoryImpl) StoreWorkType(ctx context.Context, workType WorkType) (int, error) {
	query := `INSERT INTO work_type (code, name, food_included) VALUES ($1, $2, $3) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, workType.Code, workType.Name, workType.FoodIncluded).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrWorkTypeCodeTaken
		}
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}
