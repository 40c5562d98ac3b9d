package work_type

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrWorkTypeInvalid = errors.New("invalid work type")

type Service interface {
	ListWorkTypes(ctx context.Context) ([]WorkType, error)
	GetWorkType(ctx context.Context, id int) (WorkType, error)
	CreateWorkType(ctx context.Context, workType WorkType) (WorkType, error)
	// LoadCatalog reads all work types and validates them against the configured food pairs.
	LoadCatalog(ctx context.Context) (*Catalog, error)
	// WithoutFoodVariant resolves the counterpart of a single work type including food. Other
	// misconfigured work types do not make it fail.
	WithoutFoodVariant(ctx context.Context, workType WorkType) (WorkType, error)
}

type ServiceImpl struct {
	repo      Repository
	foodPairs map[string]string
}

func NewService(repo Repository, foodPairs map[string]string) *ServiceImpl {
	return &ServiceImpl{repo: repo, foodPairs: foodPairs}
}

func (s *ServiceImpl) ListWorkTypes(ctx context.Context) ([]WorkType, error) {
	return s.repo.ListWorkTypes(ctx)
}

func (s *ServiceImpl) GetWorkType(ctx context.Context, id int) (WorkType, error) {
	return s.repo.GetWorkType(ctx, id)
}

func (s *ServiceImpl) CreateWorkType(ctx context.Context, workType WorkType) (WorkType, error) {
	workType.Code = strings.TrimSpace(workType.Code)
	if workType.Code == "" {
		return WorkType{}, fmt.Errorf("%w: code is required", ErrWorkTypeInvalid)
	}
	if workType.Name == "" {
		workType.Name = workType.Code
	}
	id, err := s.repo.StoreWorkType(ctx, workType)
	if err != nil {
		return WorkType{}, err
	}
	workType.Id = id
	if workType.FoodIncluded {
		if _, paired := s.foodPairs[workType.Code]; !paired {
			log.Warnf("work type %s includes food but has no without-food pair configured", workType.Code)
		}
	}
	return workType, nil
}

func (s *ServiceImpl) LoadCatalog(ctx context.Context) (*Catalog, error) {
	types, err := s.repo.ListWorkTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list work types: %w", err)
	}
	catalog, err := NewCatalog(types, s.foodPairs)
	if err != nil {
		log.Errorf("work type catalog is invalid: %v", err)
		return nil, err
	}
	return catalog, nil
}

func (s *ServiceImpl) WithoutFoodVariant(ctx context.Context, workType WorkType) (WorkType, error) {
	if !workType.FoodIncluded {
		return workType, nil
	}
	types, err := s.repo.ListWorkTypes(ctx)
	if err != nil {
		return WorkType{}, fmt.Errorf("failed to list work types: %w", err)
	}
	return newCatalog(types, s.foodPairs).WithoutFoodVariant(workType)
}
