package work_type

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId int
	types  map[int]WorkType
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{types: map[int]WorkType{}}
}

// NewRepositoryStubWithDefaults returns a stub holding the six standard work types.
func NewRepositoryStubWithDefaults() *RepositoryStub {
	stub := NewRepositoryStub()
	stub.Reset()
	return stub
}

func (s *RepositoryStub) ListWorkTypes(ctx context.Context) ([]WorkType, error) {
	types := make([]WorkType, 0, len(s.types))
	for _, wt := range s.types {
		types = append(types, wt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return types, nil
}

func (s *RepositoryStub) GetWorkType(ctx context.Context, id int) (WorkType, error) {
	wt, ok := s.types[id]
	if !ok {
		return WorkType{}, ErrWorkTypeNotFound
	}
	return wt, nil
}

func (s *RepositoryStub) GetWorkTypeByCode(ctx context.Context, code string) (WorkType, error) {
	for _, wt := range s.types {
		if wt.Code == code {
			return wt, nil
		}
	}
	return WorkType{}, ErrWorkTypeNotFound
}

func (s *RepositoryStub) StoreWorkType(ctx context.Context, workType WorkType) (int, error) {
	if _, err := s.GetWorkTypeByCode(ctx, workType.Code); err == nil {
		return 0, ErrWorkTypeCodeTaken
	}
	s.nextId++
	workType.Id = s.nextId
	s.types[workType.Id] = workType
	return workType.Id, nil
}

// Reset restores the six standard work types with ids 1..6.
func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.types = map[int]WorkType{}
	for _, wt := range []WorkType{
		{Code: "10_SF", Name: "Regular work with meal allowance", FoodIncluded: true},
		{Code: "11_S", Name: "Regular work"},
		{Code: "20_NF", Name: "Night work with meal allowance", FoodIncluded: true},
		{Code: "21_N", Name: "Night work"},
		{Code: "30_WF", Name: "Field work with meal allowance", FoodIncluded: true},
		{Code: "31_W", Name: "Field work"},
	} {
		_, _ = s.StoreWorkType(context.Background(), wt)
	}
}
